package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/lvillar/rollcall/job"
	"github.com/lvillar/rollcall/source"
)

// RegisterDefaultResources adds the enrollment record resources to the
// server. Resources use the sheet:// scheme and take the source and facet
// selection as query parameters: path, kind, sheet, delimiter, hub and date.
func RegisterDefaultResources(s *Server, defaults job.Job) {
	s.AddResource(Resource{
		URI:         "sheet://facets",
		Name:        "Training hubs and dates",
		Description: "Hubs, dates and sessions of a source: sheet://facets?path=/path/to/inscritos.xlsx",
		MIMEType:    "application/json",
		Handler: func(ctx context.Context, uri string) ([]ResourceContent, error) {
			j, err := jobFromURI(uri, defaults)
			if err != nil {
				return nil, err
			}
			facets, err := j.Facets(ctx)
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, facets)
		},
	})

	s.AddResource(Resource{
		URI:         "sheet://records",
		Name:        "Attendance records",
		Description: "Normalized records of a source, narrowed to one session when hub and date are given: sheet://records?path=/path/to/inscritos.csv&hub=Norte&date=05/03/2024",
		MIMEType:    "application/json",
		Handler: func(ctx context.Context, uri string) ([]ResourceContent, error) {
			j, err := jobFromURI(uri, defaults)
			if err != nil {
				return nil, err
			}
			tbl, err := j.Table(ctx)
			if err != nil {
				return nil, err
			}
			if j.Hub != "" && j.Date != "" {
				if tbl, err = j.Select(tbl); err != nil {
					return nil, err
				}
			}
			return jsonContent(uri, map[string]any{
				"columns": tbl.Columns,
				"rows":    tbl.Rows,
				"total":   tbl.Len(),
			})
		},
	})
}

func jobFromURI(uri string, defaults job.Job) (*job.Job, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parsing URI: %w", err)
	}
	q := u.Query()
	if q.Get("path") == "" {
		return nil, fmt.Errorf("missing 'path' parameter in URI")
	}
	j := job.Overlay(defaults, job.Job{
		Source: source.Spec{
			Kind:      q.Get("kind"),
			Path:      q.Get("path"),
			Sheet:     q.Get("sheet"),
			Delimiter: q.Get("delimiter"),
		},
		Hub:  q.Get("hub"),
		Date: q.Get("date"),
	})
	return &j, nil
}

func jsonContent(uri string, v any) ([]ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(data),
	}}, nil
}
