package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/mrrcast/internal/cli"
	"github.com/theirongolddev/mrrcast/internal/config"
	"github.com/theirongolddev/mrrcast/internal/model"
	"github.com/theirongolddev/mrrcast/internal/projection"
)

var flagBatchWorkers int

var batchCmd = &cobra.Command{
	Use:   "batch FILE...",
	Short: "Project several assumption files and compare them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&flagBatchWorkers, "workers", "w", runtime.NumCPU(), "Projections to run in parallel")
	rootCmd.AddCommand(batchCmd)
}

type batchResult struct {
	path string
	proj model.Projection
	err  error
}

func runBatch(_ *cobra.Command, args []string) error {
	results := projectFiles(args, max(1, flagBatchWorkers))

	rows := make([][]string, 0, len(results))
	failed := 0
	for _, r := range results {
		name := filepath.Base(r.path)
		if r.err != nil {
			failed++
			rows = append(rows, []string{name, "error", "", "", "", ""})
			continue
		}
		s := r.proj.Summary
		last := r.proj.Rows[len(r.proj.Rows)-1]
		rows = append(rows, []string{
			name,
			cli.FormatMetric(s.LTV, cli.FormatMoney),
			cli.FormatMoney(last.TotalMRR),
			cli.FormatMonthIndex(s.BreakEvenMonth, r.proj.Params.KickOff),
			cli.FormatMoney(s.PeakFundingNeed),
			cli.FormatMoney(last.CumulativeCash),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Scenario Comparison",
		Headers: []string{"File", "LTV", "Ending MRR", "Break-even", "Peak Funding", "Ending Cash"},
		Rows:    rows,
	}))

	if failed > 0 {
		fmt.Fprintln(os.Stderr)
		for _, r := range results {
			if r.err != nil {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", r.path, r.err)
			}
		}
		return fmt.Errorf("%d of %d projections failed", failed, len(results))
	}
	return nil
}

// projectFiles loads and projects each path on a bounded pool of workers.
// Results keep the order of paths.
func projectFiles(paths []string, workers int) []batchResult {
	var bar *progressbar.ProgressBar
	if flagQuiet {
		bar = progressbar.DefaultSilent(int64(len(paths)))
	} else {
		bar = progressbar.Default(int64(len(paths)), "projecting")
	}

	results := make([]batchResult, len(paths))
	work := make(chan int)

	var wg sync.WaitGroup
	for range min(workers, len(paths)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results[i] = projectFile(paths[i])
				_ = bar.Add(1)
			}
		}()
	}
	for i := range paths {
		work <- i
	}
	close(work)
	wg.Wait()
	_ = bar.Finish()

	return results
}

func projectFile(path string) batchResult {
	p, err := config.LoadAssumptions(path)
	if err != nil {
		return batchResult{path: path, err: err}
	}
	proj, err := projection.Project(p)
	return batchResult{path: path, proj: proj, err: err}
}
