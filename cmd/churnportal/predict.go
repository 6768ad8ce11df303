package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"churnportal/internal/app/forms"
	"churnportal/internal/app/services/prediction"
	"churnportal/internal/domain/employee"
	"churnportal/internal/infra/churnapi"
	"churnportal/internal/infra/config"
	"churnportal/internal/infra/obs"
	"churnportal/internal/infra/spreadsheet"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run one batch prediction for the rows of a spreadsheet",
	Long: `Reads employee rows from an .xlsx or .xls file, sends them to /predict-batch in a single
request and prints the summary followed by one verdict per employee.`,
	RunE: runPredict,
}

var (
	predictFile  string
	predictScale string
	predictAPI   string
)

func init() {
	predictCmd.Flags().StringVarP(&predictFile, "file", "f", "", "Spreadsheet with one employee per row")
	predictCmd.Flags().StringVar(&predictScale, "scale", "", "Rating convention of the file: 1-10 or 0-1 (defaults to PORTAL_SCALE)")
	predictCmd.Flags().StringVar(&predictAPI, "api", "", "Prediction API base URL (defaults to PREDICT_API_URL)")
	_ = predictCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(predictCmd)
}

var errBatchFailed = errors.New("batch prediction failed")

func runPredict(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	scale := cfg.Scale
	if predictScale != "" {
		if scale, err = employee.ParseScale(predictScale); err != nil {
			return err
		}
	}
	apiURL := cfg.PredictAPIURL
	if predictAPI != "" {
		apiURL = predictAPI
	}

	batch, rows, err := loadBatch(predictFile, scale)
	if err != nil {
		return err
	}

	logger := obs.NewLoggerTo(cmd.ErrOrStderr(), cfg.Env, cfg.LogLevel)
	svc := &prediction.Service{
		API:     churnapi.NewClient(apiURL, churnapi.NewHTTPClient(cfg.PredictAPIHeaderTimeout), logger),
		Logger:  logger,
		Timeout: cfg.PredictAPITimeout,
	}
	outcome := svc.PredictBatch(cmd.Context(), batch, scale)
	if outcome.Failed() {
		fmt.Fprintln(cmd.ErrOrStderr(), outcome.Summary.Error)
		return errBatchFailed
	}
	return printOutcome(cmd.OutOrStdout(), rows, outcome)
}

func loadBatch(path string, scale employee.Scale) (employee.Batch, []map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return employee.Batch{}, nil, err
	}
	defer file.Close()

	raw, err := spreadsheet.ReadRows(file, filepath.Base(path))
	if err != nil {
		return employee.Batch{}, nil, fmt.Errorf("read %s: %w", path, err)
	}
	form := forms.NewBatchForm(forms.PageConfig{Scale: scale, Mode: forms.ModeBatch})
	if err := form.ReplaceRows(raw); err != nil {
		return employee.Batch{}, nil, err
	}
	batch, err := form.Batch()
	if err != nil {
		return employee.Batch{}, nil, err
	}
	return batch, form.Rows(), nil
}

func printOutcome(w io.Writer, rows []map[string]string, outcome employee.BatchOutcome) error {
	s := outcome.Summary
	fmt.Fprintf(w, "Total employees: %d\nWill stay: %d\nWill leave: %d\nAttrition rate: %s%%\n\n",
		s.TotalEmployees, s.WillStay, s.WillLeave, s.AttritionRateText())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tdepartment\tsalary\tprediction")
	for i, p := range outcome.Predictions {
		var dept, salary string
		if i < len(rows) {
			dept, salary = rows[i][forms.FieldDepartment], rows[i][forms.FieldSalary]
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, dept, salary, p.Text())
	}
	return tw.Flush()
}
