package main

import (
	"errors"
	"fmt"

	"ai-nutricare/internal/app"
	"ai-nutricare/internal/intake"

	"github.com/spf13/cobra"
)

var (
	analyzeFile   string
	analyzeDiet   string
	analyzeRegion string
	analyzeDay    int
	analyzeJSON   bool
	analyzeExport bool
	analyzeValues = map[string]*string{}

	exportJSON string
	exportOut  string

	loginEmail string
	signupName string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a lab report PDF or manually entered biomarkers",
	Long: `Sends a lab report (--file) or the six required biomarkers to the analysis
service and prints the clinical summary and diet plan.

Example:
  nutricare analyze --file labs.pdf --diet vegetarian --region South
  nutricare analyze --glucose 95 --creatinine 1.0 --urea-bun 15 \
    --sodium 140 --potassium 4.0 --cholesterol 180 --age 52 --export`,
	RunE: func(cmd *cobra.Command, args []string) error {
		diet, err := intake.ParseDietType(analyzeDiet)
		if err != nil {
			return err
		}
		region, err := intake.ParseRegion(analyzeRegion)
		if err != nil {
			return err
		}
		prefs := cfg.Preferences()
		if cmd.Flags().Changed("diet") {
			prefs.DietType = diet
		}
		if cmd.Flags().Changed("region") {
			prefs.Region = region
		}
		if analyzeDay < 0 || analyzeDay > 7 {
			return errors.New("--day must be between 1 and 7")
		}

		req := app.AnalyzeRequest{
			DocumentPath: analyzeFile,
			Prefs:        prefs,
			Day:          analyzeDay,
			JSON:         analyzeJSON,
			Export:       analyzeExport,
		}
		if analyzeFile == "" {
			form := intake.NewManualForm()
			for key, v := range analyzeValues {
				if cmd.Flags().Changed(flagName(key)) {
					form.Set(key, *v)
				}
			}
			req.Form = form
		}

		_, err = application.Analyze(cmd.Context(), req)
		return err
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a saved JSON analysis response as a PDF report",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportJSON == "" {
			return errors.New("--json is required")
		}
		dir := exportOut
		if dir == "" {
			dir = cfg.ReportDir
		}
		_, err := application.ExportFromFile(cmd.Context(), exportJSON, dir)
		return err
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Set the email shown on the dashboard and reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.SignIn(cmd.Context(), loginEmail)
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Set the name and email shown on the dashboard and reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.SignUp(cmd.Context(), signupName, loginEmail)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the held identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.SignOut(cmd.Context())
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the held identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.WhoAmI(cmd.Context())
	},
}

// flagName maps a form key to its flag, e.g. urea_bun to urea-bun.
func flagName(key string) string {
	out := []byte(key)
	for i, c := range out {
		if c == '_' {
			out[i] = '-'
		}
	}
	return string(out)
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeFile, "file", "f", "", "lab report PDF to upload")
	f.StringVar(&analyzeDiet, "diet", "", "diet type: vegetarian, non-vegetarian or both")
	f.StringVar(&analyzeRegion, "region", "", "regional cuisine: North, South, East, West, North East or all")
	f.IntVar(&analyzeDay, "day", 0, "print only this day (1-7)")
	f.BoolVar(&analyzeJSON, "json", false, "print the raw JSON response")
	f.BoolVar(&analyzeExport, "export", false, "also save the PDF report")

	for _, field := range intake.BiomarkerFields {
		v := new(string)
		analyzeValues[field.Key] = v
		f.StringVar(v, flagName(field.Key), "", fmt.Sprintf("%s in %s (normal %s)", field.Label, field.Unit, field.Range))
	}
	for _, key := range intake.OptionalKeys {
		v := new(string)
		analyzeValues[key] = v
		f.StringVar(v, flagName(key), "", "optional "+key)
	}
	analyzeCmd.MarkFlagsMutuallyExclusive("file", "glucose")

	exportCmd.Flags().StringVar(&exportJSON, "json", "", "JSON response saved with analyze --json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output directory (default: report_dir)")

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email address")
	_ = loginCmd.MarkFlagRequired("email")
	signupCmd.Flags().StringVar(&signupName, "name", "", "display name")
	signupCmd.Flags().StringVar(&loginEmail, "email", "", "email address")
	_ = signupCmd.MarkFlagRequired("name")
	_ = signupCmd.MarkFlagRequired("email")
}
