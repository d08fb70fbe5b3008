package stats

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/zentheon/respackr/pkg/errors"
)

// PrintSummary renders the end-of-run summary to the terminal.
func PrintSummary(t *Tally) {
	pterm.DefaultSection.Println("Summary")

	counts := pterm.TableData{
		{"Total files loaded", fmt.Sprint(t.SourceFilesLoaded)},
		{"Formats processed", fmt.Sprint(t.FormatsProcessed)},
		{"Resourcepack ZIPs written", fmt.Sprint(t.ArchivesCreated)},
	}
	_ = pterm.DefaultTable.WithData(counts).Render()

	if len(t.FileExtensions) > 0 {
		pterm.DefaultSection.WithLevel(2).Println("Loaded filetypes")
		data := pterm.TableData{}
		for _, ext := range sortedCounts(t.FileExtensions) {
			data = append(data, []string{strings.TrimPrefix(ext, "."), fmt.Sprint(t.FileExtensions[ext])})
		}
		_ = pterm.DefaultTable.WithData(data).Render()
	}

	if t.ImagesGenerated > 0 {
		pterm.DefaultSection.WithLevel(2).Println("SVG processing")
		data := pterm.TableData{
			{"SVG files themed", fmt.Sprint(t.SVGFilesEdited)},
			{"PNG files generated", fmt.Sprint(t.ImagesGenerated)},
		}
		if t.TaggedVariants > 0 {
			data = append(data, []string{"Resolution-tagged variants", fmt.Sprint(t.TaggedVariants)})
		}
		_ = pterm.DefaultTable.WithData(data).Render()
	}

	if len(t.ColorEdits) > 0 {
		pterm.DefaultSection.WithLevel(2).Println("Colors applied to SVG objects")
		data := pterm.TableData{}
		for _, label := range sortedCounts(t.ColorEdits) {
			data = append(data, []string{label, fmt.Sprint(t.ColorEdits[label])})
		}
		_ = pterm.DefaultTable.WithData(data).Render()
	}

	printProblems(t, errors.SeverityWarning, "Warnings", "No warnings recorded")
	printProblems(t, errors.SeverityError, "Errors", "No errors recorded")
}

func printProblems(t *Tally, severity errors.Severity, title, emptyMsg string) {
	pterm.DefaultSection.WithLevel(2).Println(title)
	byCode := t.Problems[severity]
	if len(byCode) == 0 {
		pterm.Println(emptyMsg)
		return
	}
	counts := make(map[string]int, len(byCode))
	for code, n := range byCode {
		counts[string(code)] = n
	}
	data := pterm.TableData{}
	for _, code := range sortedCounts(counts) {
		data = append(data, []string{code, fmt.Sprint(counts[code])})
	}
	_ = pterm.DefaultTable.WithData(data).Render()
}
