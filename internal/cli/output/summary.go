package output

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// FileRow is one line of the per-file summary.
type FileRow struct {
	Path     string `json:"path"`
	Rewrites int    `json:"rewrites"`
	Written  bool   `json:"written"`
}

// Summary is the result of a run as printed to the user.
type Summary struct {
	RunID          string        `json:"run_id,omitempty"`
	Project        string        `json:"project"`
	FilesProcessed int           `json:"files_processed"`
	PathsProcessed int           `json:"paths_processed"`
	Elapsed        time.Duration `json:"elapsed_ns"`
	Files          []FileRow     `json:"files,omitempty"`
}

// RenderSummary prints s in the renderer's mode. The per-file table is
// only printed when verbose is set.
func (r *Renderer) RenderSummary(s Summary, verbose bool) error {
	if r.EffectiveMode() == ModeJSON {
		if !verbose {
			s.Files = nil
		}
		return r.JSON(s)
	}

	st := r.styles
	if verbose && len(s.Files) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(r.out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"File", "Rewrites", "Written"})
		for _, f := range s.Files {
			name := f.Path
			if rel, err := filepath.Rel(s.Project, f.Path); err == nil {
				name = filepath.ToSlash(rel)
			}
			t.AppendRow(table.Row{name, f.Rewrites, f.Written})
		}
		t.Render()
	}

	r.Println(st.Bold.Render("Total files processed:"), s.FilesProcessed)
	r.Println(st.Bold.Render("Total paths processed:"), s.PathsProcessed)
	r.Println(fmt.Sprintf("Operation finished in %s", s.Elapsed.Round(time.Millisecond)))
	r.Println(st.Success.Render("Project is prepared, now run it normally!"))
	return nil
}
