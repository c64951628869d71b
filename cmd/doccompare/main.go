// Package main provides the doccompare CLI, which runs comparisons on local
// files without the HTTP server.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/doccompare/internal/imagediff"
	"github.com/JonMunkholm/doccompare/internal/pdfdiff"
	"github.com/JonMunkholm/doccompare/internal/report"
	"github.com/JonMunkholm/doccompare/internal/spreadsheet"
	"github.com/JonMunkholm/doccompare/internal/tablediff"
	"github.com/JonMunkholm/doccompare/internal/workspace"
)

var (
	outputPath string
	watermark  string
	sheet1     string
	sheet2     string
	markStyle  string
	threshold  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "doccompare",
		Short:        "Compare two versions of a document",
		Long:         `doccompare renders an HTML report of the differences between two spreadsheets, images or PDFs.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", report.FileName, "Report file path")
	rootCmd.PersistentFlags().StringVar(&watermark, "watermark", "", "Watermark text drawn over the report")

	excelCmd := &cobra.Command{
		Use:   "excel [file1] [file2]",
		Short: "Compare two spreadsheets (xlsx or csv)",
		Args:  cobra.ExactArgs(2),
		RunE:  runExcel,
	}
	excelCmd.Flags().StringVar(&sheet1, "sheet1", "", "Sheet of file1 (default: first sheet)")
	excelCmd.Flags().StringVar(&sheet2, "sheet2", "", "Sheet of file2 (default: first sheet)")

	imageCmd := &cobra.Command{
		Use:   "image [file1] [file2]",
		Short: "Mark the regions where file2 differs from file1",
		Args:  cobra.ExactArgs(2),
		RunE:  runImage,
	}
	imageCmd.Flags().StringVar(&markStyle, "style", "box", "Mark style: box or underline")
	imageCmd.Flags().IntVar(&threshold, "threshold", int(imagediff.DefaultThreshold), "Grayscale difference (1-255) that counts as a change")

	pdfCmd := &cobra.Command{
		Use:   "pdf [file1] [file2]",
		Short: "Compare the text of two PDFs page by page",
		Args:  cobra.ExactArgs(2),
		RunE:  runPDF,
	}

	sheetsCmd := &cobra.Command{
		Use:   "sheets [file]",
		Short: "List the sheets of a workbook as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runSheets,
	}

	rootCmd.AddCommand(excelCmd, imageCmd, pdfCmd, sheetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runExcel(cmd *cobra.Command, args []string) error {
	if err := checkFiles(args); err != nil {
		return err
	}

	name1, err := pickSheet(args[0], sheet1)
	if err != nil {
		return err
	}
	name2, err := pickSheet(args[1], sheet2)
	if err != nil {
		return err
	}

	t1, err := spreadsheet.ReadTable(args[0], name1)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	t2, err := spreadsheet.ReadTable(args[1], name2)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[1], err)
	}

	res, err := tablediff.AlignAndDiff(t1, t2)
	if err != nil {
		return fmt.Errorf("compare sheets: %w", err)
	}

	err = report.WriteFile(cmd.Context(), outputPath, report.ExcelReport(report.ExcelData{
		Title:     "Excel Document Comparison",
		Left:      report.FileInfo{Name: filepath.Base(args[0]), Version: workspace.Version(args[0]), Sheet: name1},
		Right:     report.FileInfo{Name: filepath.Base(args[1]), Version: workspace.Version(args[1]), Sheet: name2},
		Result:    res,
		Watermark: report.Watermark{Message: watermark},
	}))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d differing rows, %d differing cells\n",
		outputPath, len(res.DifferingRows), len(res.CellDiffs))
	return nil
}

func runImage(cmd *cobra.Command, args []string) error {
	if err := checkFiles(args); err != nil {
		return err
	}
	for _, p := range args {
		if !imagediff.IsSupported(p) {
			return fmt.Errorf("%s: %w", p, imagediff.ErrUnsupportedFormat)
		}
	}
	if threshold < 1 || threshold > 255 {
		return fmt.Errorf("invalid threshold: %d (must be 1-255)", threshold)
	}

	before, err := imagediff.Load(args[0])
	if err != nil {
		return err
	}
	after, err := imagediff.Load(args[1])
	if err != nil {
		return err
	}

	opts := imagediff.DefaultOptions()
	opts.Threshold = uint8(threshold)
	opts.Style = imagediff.ParseMarkStyle(markStyle)
	res, err := imagediff.Compare(before, after, opts)
	if err != nil {
		return fmt.Errorf("compare images: %w", err)
	}

	// The annotated copy lands next to the report; the original file2 is
	// left untouched.
	outDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	annotated := filepath.Join(outDir, "marked_"+filepath.Base(args[1]))
	if err := imagediff.Save(annotated, res.Annotated); err != nil {
		return err
	}

	left, err := relURL(outDir, args[0])
	if err != nil {
		return err
	}
	right, err := relURL(outDir, annotated)
	if err != nil {
		return err
	}

	err = report.WriteFile(cmd.Context(), outputPath, report.ImageReport(report.ImageData{
		Left:      report.FileInfo{Name: filepath.Base(args[0]), Version: workspace.Version(args[0]), URL: left},
		Right:     report.FileInfo{Name: filepath.Base(args[1]), Version: workspace.Version(args[1]), URL: right},
		Regions:   len(res.Regions),
		Watermark: report.Watermark{Message: watermark},
	}))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d changed regions\n", outputPath, len(res.Regions))
	return nil
}

func runPDF(cmd *cobra.Command, args []string) error {
	if err := checkFiles(args); err != nil {
		return err
	}

	pages1, err := pdfdiff.ExtractPages(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	pages2, err := pdfdiff.ExtractPages(args[1])
	if err != nil {
		return fmt.Errorf("%s: %w", args[1], err)
	}

	diffs := pdfdiff.ComparePages(pages1, pages2)
	err = report.WriteFile(cmd.Context(), outputPath, report.PDFReport(report.PDFData{
		Left:      report.FileInfo{Name: filepath.Base(args[0]), Version: workspace.Version(args[0])},
		Right:     report.FileInfo{Name: filepath.Base(args[1]), Version: workspace.Version(args[1])},
		Pages:     diffs,
		Watermark: report.Watermark{Message: watermark},
	}))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: changed pages %v\n", outputPath, pdfdiff.ChangedPages(diffs))
	return nil
}

func runSheets(cmd *cobra.Command, args []string) error {
	if err := checkFiles(args); err != nil {
		return err
	}
	props, err := spreadsheet.Properties(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(props)
}

// checkFiles fails on the first argument that is not an existing file.
func checkFiles(paths []string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", p)
		}
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("not a file: %s", p)
		}
	}
	return nil
}

// pickSheet returns name, or the first sheet when name is empty, and fails
// if the workbook has no such sheet.
func pickSheet(path, name string) (string, error) {
	if name == "" {
		return spreadsheet.FirstSheet(path)
	}
	props, err := spreadsheet.Properties(path)
	if err != nil {
		return "", err
	}
	for _, p := range props {
		if p.Name == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("%s: %w: %s", path, spreadsheet.ErrSheetNotFound, name)
}

// relURL returns target relative to dir, with forward slashes, for use as a
// link in a report written to dir.
func relURL(dir, target string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absDir, absTarget)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
