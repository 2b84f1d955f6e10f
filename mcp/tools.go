package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lvillar/rollcall/job"
	"github.com/lvillar/rollcall/pageops"
)

// maxPreviewRows bounds the rows returned by preview_attendance.
const maxPreviewRows = 200

// RegisterDefaultTools adds the attendance sheet tools to the server. Job
// arguments are layered over defaults, so callers may pass only the source,
// hub and date.
func RegisterDefaultTools(s *Server, defaults job.Job) {
	s.AddTool(listFacetsTool(defaults))
	s.AddTool(previewAttendanceTool(defaults))
	s.AddTool(createAttendancePDFTool(defaults))
	s.AddTool(createAttendanceBatchTool(defaults))
	s.AddTool(mergeAttendancePDFsTool())
	s.AddTool(watermarkPDFTool())
}

var jobSchema = map[string]any{
	"type":        "object",
	"description": `Attendance job: {"source": {"path": "inscritos.xlsx"}, "hub": "...", "date": "DD/MM/YYYY", "layout": {...}, "verification": "qr"}`,
	"properties": map[string]any{
		"source": map[string]any{
			"type":        "object",
			"description": "Source of the records: path (file or URL), kind (csv, xlsx, http, json), sheet, delimiter, query (jq)",
		},
		"hub":  map[string]any{"type": "string", "description": "Training hub to print"},
		"date": map[string]any{"type": "string", "description": "Session date, e.g. 05/03/2024"},
	},
	"required": []string{"source"},
}

// jobArg decodes the "job" argument and layers it over defaults.
func jobArg(args map[string]any, defaults job.Job) (*job.Job, error) {
	raw, ok := args["job"]
	if !ok {
		return nil, fmt.Errorf("missing 'job' argument")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding job: %w", err)
	}
	j, err := job.Parse(data)
	if err != nil {
		return nil, err
	}
	merged := job.Overlay(defaults, *j)
	return &merged, nil
}

func jsonResult(v any) (ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolResult{}, err
	}
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: string(data)}}}, nil
}

func listFacetsTool(defaults job.Job) Tool {
	return Tool{
		Name:        "list_facets",
		Description: "Load a source of enrollment records and list its training hubs, session dates and the number of rows of each hub and date. Set job.hub to list only the dates of that hub.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"job": jobSchema},
			"required":   []string{"job"},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			j, err := jobArg(args, defaults)
			if err != nil {
				return ToolResult{}, err
			}
			facets, err := j.Facets(ctx)
			if err != nil {
				return ToolResult{}, err
			}
			return jsonResult(facets)
		},
	}
}

func previewAttendanceTool(defaults job.Job) Tool {
	return Tool{
		Name:        "preview_attendance",
		Description: "Return the rows that would be printed on the attendance sheet of one hub and date, as JSON.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"job": jobSchema,
				"limit": map[string]any{
					"type":        "number",
					"description": fmt.Sprintf("Maximum rows to return (default and cap: %d)", maxPreviewRows),
				},
			},
			"required": []string{"job"},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			j, err := jobArg(args, defaults)
			if err != nil {
				return ToolResult{}, err
			}
			tbl, err := j.Preview(ctx)
			if err != nil {
				return ToolResult{}, err
			}
			limit := maxPreviewRows
			if l, ok := args["limit"].(float64); ok && l > 0 && int(l) < limit {
				limit = int(l)
			}
			rows := tbl.Rows
			if len(rows) > limit {
				rows = rows[:limit]
			}
			return jsonResult(map[string]any{
				"columns": tbl.Columns,
				"rows":    rows,
				"total":   tbl.Len(),
			})
		},
	}
}

func createAttendancePDFTool(defaults job.Job) Tool {
	return Tool{
		Name:        "create_attendance_pdf",
		Description: "Render the attendance sheet of one hub and date as a PDF with a signature column. Returns the PDF as base64 unless outputPath is given.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"job": jobSchema,
				"outputPath": map[string]any{
					"type":        "string",
					"description": "Optional file path to save the PDF. If omitted, returns base64.",
				},
			},
			"required": []string{"job"},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			j, err := jobArg(args, defaults)
			if err != nil {
				return ToolResult{}, err
			}
			var buf bytes.Buffer
			res, err := job.Run(ctx, &buf, j)
			if err != nil {
				return ToolResult{}, fmt.Errorf("rendering sheet: %w", err)
			}
			summary := fmt.Sprintf("Attendance sheet created: %d rows on %d pages, document %s", res.Report.Rows, res.Pages, res.DocumentID)
			for _, w := range res.Report.Warnings {
				summary += fmt.Sprintf("\nwarning: %v", w)
			}
			return pdfResult(buf.Bytes(), summary, res.FileName, args)
		},
	}
}

func createAttendanceBatchTool(defaults job.Job) Tool {
	return Tool{
		Name:        "create_attendance_batch",
		Description: "Render one attendance sheet per hub and date of the source into a single PDF. job.hub and job.date restrict the batch.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"job": jobSchema,
				"outputPath": map[string]any{
					"type":        "string",
					"description": "Optional file path to save the PDF. If omitted, returns base64.",
				},
			},
			"required": []string{"job"},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			j, err := jobArg(args, defaults)
			if err != nil {
				return ToolResult{}, err
			}
			var buf bytes.Buffer
			res, err := job.Batch(ctx, &buf, j)
			if err != nil {
				return ToolResult{}, fmt.Errorf("rendering batch: %w", err)
			}
			summary := fmt.Sprintf("Attendance batch created: %d sheets on %d pages", len(res.Sessions), res.Pages)
			return pdfResult(buf.Bytes(), summary, "", args)
		},
	}
}

func pdfResult(pdf []byte, summary, name string, args map[string]any) (ToolResult, error) {
	if outputPath, ok := args["outputPath"].(string); ok && outputPath != "" {
		if err := os.WriteFile(outputPath, pdf, 0o644); err != nil {
			return ToolResult{}, fmt.Errorf("writing file: %w", err)
		}
		return ToolResult{
			Content: []ContentBlock{{
				Type: "text",
				Text: fmt.Sprintf("%s\nSaved to %s (%d bytes)", summary, outputPath, len(pdf)),
			}},
		}, nil
	}

	if name != "" {
		summary += "\nSuggested file name: " + name
	}
	encoded := base64.StdEncoding.EncodeToString(pdf)
	return ToolResult{
		Content: []ContentBlock{{
			Type: "text",
			Text: fmt.Sprintf("%s (%d bytes). Base64 data:\n%s", summary, len(pdf), encoded),
		}},
	}, nil
}

func mergeAttendancePDFsTool() Tool {
	return Tool{
		Name:        "merge_attendance_pdfs",
		Description: "Merge several attendance sheet PDF files into a single PDF.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"inputPaths": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Paths to PDF files to merge, in order",
				},
				"outputPath": map[string]any{
					"type":        "string",
					"description": "Path for the merged output PDF",
				},
			},
			"required": []string{"inputPaths", "outputPath"},
		},
		Handler: handleMergePDFs,
	}
}

func handleMergePDFs(_ context.Context, args map[string]any) (ToolResult, error) {
	pathsRaw, ok := args["inputPaths"].([]any)
	if !ok || len(pathsRaw) == 0 {
		return ToolResult{}, fmt.Errorf("missing 'inputPaths' argument")
	}
	outputPath, ok := args["outputPath"].(string)
	if !ok || outputPath == "" {
		return ToolResult{}, fmt.Errorf("missing 'outputPath' argument")
	}

	paths := make([]string, len(pathsRaw))
	for i, p := range pathsRaw {
		path, ok := p.(string)
		if !ok || path == "" {
			return ToolResult{}, fmt.Errorf("'inputPaths' entry %d must be a non-empty string", i+1)
		}
		paths[i] = path
	}

	if err := pageops.MergeFiles(outputPath, paths...); err != nil {
		return ToolResult{}, fmt.Errorf("merging: %w", err)
	}

	return ToolResult{
		Content: []ContentBlock{{
			Type: "text",
			Text: fmt.Sprintf("Merged %d PDFs into %s", len(paths), outputPath),
		}},
	}, nil
}

func watermarkPDFTool() Tool {
	return Tool{
		Name:        "watermark_pdf",
		Description: "Stamp a translucent text watermark (e.g. 'RASCUNHO', 'CÓPIA') over every page of a PDF file.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"inputPath": map[string]any{
					"type":        "string",
					"description": "Path to the input PDF",
				},
				"outputPath": map[string]any{
					"type":        "string",
					"description": "Path for the output PDF",
				},
				"text": map[string]any{
					"type":        "string",
					"description": "Watermark text",
				},
				"fontSize": map[string]any{
					"type":        "number",
					"description": "Font size in points (default: 60)",
				},
				"opacity": map[string]any{
					"type":        "number",
					"description": "Opacity from 0.0 to 1.0 (default: 0.3)",
				},
				"angle": map[string]any{
					"type":        "number",
					"description": "Rotation angle in degrees (default: 45)",
				},
			},
			"required": []string{"inputPath", "outputPath", "text"},
		},
		Handler: handleWatermarkPDF,
	}
}

func handleWatermarkPDF(_ context.Context, args map[string]any) (ToolResult, error) {
	inputPath, _ := args["inputPath"].(string)
	outputPath, _ := args["outputPath"].(string)
	text, _ := args["text"].(string)

	if inputPath == "" || outputPath == "" || text == "" {
		return ToolResult{}, fmt.Errorf("inputPath, outputPath, and text are required")
	}

	wm := pageops.TextWatermark{Text: text}
	if fs, ok := args["fontSize"].(float64); ok {
		wm.FontSize = fs
	}
	if op, ok := args["opacity"].(float64); ok {
		wm.Opacity = op
	}
	if angle, ok := args["angle"].(float64); ok {
		wm.Angle = angle
	}

	input, err := os.ReadFile(inputPath)
	if err != nil {
		return ToolResult{}, err
	}
	var buf bytes.Buffer
	pages, err := pageops.AddTextWatermark(&buf, input, wm)
	if err != nil {
		return ToolResult{}, err
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return ToolResult{}, err
	}

	return ToolResult{
		Content: []ContentBlock{{
			Type: "text",
			Text: fmt.Sprintf("Watermark '%s' added to %d pages: %s -> %s", text, pages, inputPath, outputPath),
		}},
	}, nil
}
