package table_test

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/lvillar/rollcall"
	"github.com/lvillar/rollcall/table"
)

// runeWidth measures one unit per rune, two for bold text.
var runeWidth = table.MeasureFunc(func(text string, font rollcall.FontSpec) float64 {
	w := float64(utf8.RuneCountInString(text))
	if font.Style == "B" {
		w *= 2
	}
	return w
})

func planParams(usable float64) table.PlanParams {
	return table.PlanParams{
		UsableWidth:    usable,
		SignatureWidth: 60,
		Padding:        1,
		MinColumnWidth: 10,
		HeaderFont:     rollcall.FontSpec{Family: "Helvetica", Style: "B", Size: 10},
		BodyFont:       rollcall.FontSpec{Family: "Helvetica", Size: 10},
		SignatureLabel: "Signature",
	}
}

func TestPlanNaturalWidths(t *testing.T) {
	tbl := rollcall.NewTable("ab", "c")
	tbl.AddRow("abcdefgh", "x")

	p := planParams(180)
	plan := table.PlanColumns(tbl, runeWidth, p)

	if plan.Policy != table.PolicyNatural {
		t.Fatalf("policy = %s, want natural", plan.Policy)
	}
	// "ab" bold is 4 wide, the cell 8: natural 8+2. "c" bold is 2: natural 2+2.
	if got := plan.Widths(); len(got) != 3 || got[0] != 10 || got[1] != 4 || got[2] != 60 {
		t.Errorf("widths = %v, want [10 4 60]", got)
	}
	if plan.Natural != 14 {
		t.Errorf("natural = %.2f, want 14", plan.Natural)
	}
	if plan.DataColumns() != 2 {
		t.Errorf("data columns = %d, want 2", plan.DataColumns())
	}
}

func TestPlanFillSlackIsProportional(t *testing.T) {
	tbl := rollcall.NewTable("a", "b")
	tbl.AddRow("xxxxxxxx", "xx") // naturals 10 and 4

	p := planParams(130)
	p.FillSlack = true
	plan := table.PlanColumns(tbl, runeWidth, p)

	if plan.Policy != table.PolicyFill {
		t.Fatalf("policy = %s, want fill", plan.Policy)
	}
	w := plan.Widths()
	if !near(w[0]+w[1], 70) {
		t.Errorf("data width = %.4f, want 70", w[0]+w[1])
	}
	if !near(w[0]/w[1], 10.0/4.0) {
		t.Errorf("ratio = %.4f, want 2.5", w[0]/w[1])
	}
	if !near(plan.TotalWidth(), 130) {
		t.Errorf("total = %.4f, want 130", plan.TotalWidth())
	}
}

func TestPlanScalesDownToUsableWidth(t *testing.T) {
	tbl := rollcall.NewTable("name", "notes")
	tbl.AddRow(strings.Repeat("x", 100), strings.Repeat("y", 300))

	p := planParams(180)
	plan := table.PlanColumns(tbl, runeWidth, p)

	if plan.Policy != table.PolicyScale {
		t.Fatalf("policy = %s, want scale", plan.Policy)
	}
	if plan.Scale >= 1 {
		t.Errorf("scale = %.4f, want < 1", plan.Scale)
	}
	if !near(plan.TotalWidth(), 180) {
		t.Errorf("total = %.4f, want 180", plan.TotalWidth())
	}
	sig := plan.Columns[2]
	if !sig.Signature || sig.Width != 60 {
		t.Errorf("signature = %+v, want unscaled width 60", sig)
	}
	w := plan.Widths()
	if !near(w[0]/w[1], 102.0/302.0) {
		t.Errorf("ratio = %.4f, want proportional to natural widths", w[0]/w[1])
	}
}

func TestPlanSignatureWiderThanPage(t *testing.T) {
	tbl := rollcall.NewTable("a", "b")
	tbl.AddRow("1", "2")

	p := planParams(50)
	plan := table.PlanColumns(tbl, runeWidth, p)

	if plan.Policy != table.PolicyFloor {
		t.Fatalf("policy = %s, want floor", plan.Policy)
	}
	if got := plan.Widths(); got[0] != 10 || got[1] != 10 || got[2] != 60 {
		t.Errorf("widths = %v, want floors and signature", got)
	}
	var dl *rollcall.DegenerateLayoutError
	if len(plan.Warnings) != 1 || !errors.As(plan.Warnings[0], &dl) {
		t.Errorf("warnings = %v", plan.Warnings)
	}
}

func TestPlanNothingToMeasure(t *testing.T) {
	tbl := rollcall.NewTable("", "")
	tbl.AddRow("", "")

	p := planParams(180)
	p.FillSlack = true
	plan := table.PlanColumns(tbl, runeWidth, p)

	w := plan.Widths()
	if !near(w[0], 60) || !near(w[1], 60) {
		t.Errorf("widths = %v, want equal shares of 120", w)
	}
	if len(plan.Warnings) != 1 {
		t.Errorf("warnings = %v, want one", plan.Warnings)
	}
}

func TestPlanNoColumns(t *testing.T) {
	plan := table.PlanColumns(rollcall.Table{}, runeWidth, planParams(180))
	if plan.DataColumns() != 0 {
		t.Errorf("data columns = %d", plan.DataColumns())
	}
	if got := plan.Labels(); len(got) != 1 || got[0] != "Signature" {
		t.Errorf("labels = %v", got)
	}
	if len(plan.Warnings) != 1 {
		t.Errorf("warnings = %v, want one", plan.Warnings)
	}
}

func TestPlanColumnAlign(t *testing.T) {
	tbl := rollcall.NewTable("Nome", "Turma", "Nota")
	p := planParams(180)
	p.Align = map[string]string{"Turma": "center", "Nota": "R"}
	plan := table.PlanColumns(tbl, runeWidth, p)

	want := []string{table.AlignLeft, table.AlignCenter, table.AlignRight, table.AlignLeft}
	for i, c := range plan.Columns {
		if c.Align != want[i] {
			t.Errorf("column %q align = %q, want %q", c.Name, c.Align, want[i])
		}
	}
}

func TestMeasurerMatchesFonts(t *testing.T) {
	m := table.NewMeasurer("")
	regular := m.TextWidth("Attendance", rollcall.FontSpec{Family: "Helvetica", Size: 10})
	bold := m.TextWidth("Attendance", rollcall.FontSpec{Family: "Helvetica", Style: "B", Size: 10})
	if regular <= 0 || bold <= regular {
		t.Errorf("regular = %.3f bold = %.3f, want 0 < regular < bold", regular, bold)
	}
	if w := m.TextWidth("", rollcall.FontSpec{Family: "Helvetica", Size: 10}); w != 0 {
		t.Errorf("empty width = %.3f", w)
	}
	accented := m.TextWidth("Presença", rollcall.FontSpec{Family: "Helvetica", Size: 10})
	plain := m.TextWidth("Presenca", rollcall.FontSpec{Family: "Helvetica", Size: 10})
	if !near(accented, plain) {
		t.Errorf("ç measured %.4f, c measured %.4f", accented, plain)
	}
}
