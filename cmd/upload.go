/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/labwave/client"
	"github.com/humaidq/labwave/report"
	"github.com/humaidq/labwave/viewer"
)

var CmdUpload = &cli.Command{
	Name:      "upload",
	Usage:     "Upload a lab report to the API and print the result",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "api-url",
			Sources: cli.EnvVars("LABWAVE_API_URL"),
			Value:   "http://127.0.0.1:8080/api/",
			Usage:   "base URL of the upload API",
		},
		&cli.StringFlag{
			Name:  "mode",
			Value: string(report.ModePatient),
			Usage: "report view: patient or clinic",
		},
		&cli.StringFlag{
			Name:  "html",
			Usage: "also write the rendered report to this HTML file",
		},
	},
	Action: upload,
}

func upload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errFileArgRequired
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	mode := report.ParseMode(cmd.String("mode"))

	res, err := client.New(cmd.String("api-url")).
		Submit(ctx, client.File{Name: filepath.Base(path), Data: data}, mode)
	if err != nil {
		return err
	}

	rendered, err := viewer.Render(res)
	if err != nil {
		return err
	}

	printResult(cmd.Root().Writer, res, rendered)

	if out := cmd.String("html"); out != "" {
		page, err := standalonePage(filepath.Base(path), rendered)
		if err != nil {
			return err
		}

		if err := os.WriteFile(out, page, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
	}

	return nil
}

func printResult(w io.Writer, res report.Result, rendered *viewer.Rendered) {
	for _, m := range rendered.Metrics {
		fmt.Fprintf(w, "%-20s %s\n", m.Label+":", m.Value)
	}

	switch {
	case res.Patient != nil:
		fmt.Fprintf(w, "\n%s\n", res.Patient.Summary.Or("No summary available."))
	case res.Clinic != nil:
		fmt.Fprintf(w, "\n%s\n", res.Clinic.Summary.Or("No summary available."))
	}
}

var standaloneTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{.Rendered.Fragment}}
{{range .Rendered.Charts}}<figure><figcaption>{{.Title}}</figcaption>{{.HTML}}</figure>
{{end}}</body>
</html>
`))

func standalonePage(title string, rendered *viewer.Rendered) ([]byte, error) {
	var buf bytes.Buffer

	err := standaloneTemplate.Execute(&buf, map[string]any{"Title": title, "Rendered": rendered})
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	return buf.Bytes(), nil
}
