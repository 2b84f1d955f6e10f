package table_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lvillar/rollcall"
	"github.com/lvillar/rollcall/table"
)

// ExampleRender lays out a short attendance list and writes it to a file.
func ExampleRender() {
	tbl := rollcall.NewTable("Nome", "CPF", "Turma")
	tbl.AddRow("Ana Souza", "123.456.789-00", "T1")
	tbl.AddRow("Bruno Dias", "987.654.321-00", "T1")
	tbl.AddRow("Carla Nunes", "111.222.333-44", "T2")

	rep, err := table.RenderReport(tbl, rollcall.ReportContext{
		Title: "Lista de Presença",
		Hub:   "Polo Centro",
		Date:  "05/03/2024",
	},
		rollcall.WithLabels(rollcall.PortugueseLabels()),
		rollcall.WithRowNumbers(true),
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	dir, err := os.MkdirTemp("", "rollcall")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)
	if err := os.WriteFile(filepath.Join(dir, "lista.pdf"), rep.PDF, 0o644); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("pages:", rep.Pages)
	fmt.Println("rows:", rep.Rows)
	fmt.Println("columns:", rep.Plan.Labels())
	// Output:
	// pages: 1
	// rows: 3
	// columns: [# Nome CPF Turma Assinatura]
}

// ExamplePlanColumns plans widths without drawing anything.
func ExamplePlanColumns() {
	tbl := rollcall.NewTable("Nome", "Turma")
	tbl.AddRow("Ana Souza", "T1")

	cfg := rollcall.DefaultConfig()
	plan := table.PlanColumns(tbl, table.NewMeasurer(cfg.Unit), table.PlanParams{
		UsableWidth:    186,
		SignatureWidth: cfg.SignatureWidth,
		Padding:        cfg.CellPadding,
		MinColumnWidth: cfg.MinColumnWidth,
		HeaderFont:     cfg.HeaderFont,
		BodyFont:       cfg.BodyFont,
		SignatureLabel: "Signature",
		FillSlack:      true,
	})
	fmt.Printf("%s %.0f\n", plan.Policy, plan.TotalWidth())
	// Output:
	// fill 186
}
