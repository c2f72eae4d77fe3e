package cli

import (
	"fmt"
	"strings"

	"github.com/ppiankov/graphgate/internal/patient"
	"github.com/spf13/cobra"
)

var (
	patientName      string
	patientAge       int
	patientSex       string
	patientSurgeries []string
	patientBP        string
)

// patientCmd represents the patient command
var patientCmd = &cobra.Command{
	Use:   "patient",
	Short: "Manage patient records used for question enrichment",
	Long: `Patient manages the local record store whose entries are rendered
into context blocks and prepended to questions asked with --patient.`,
}

var patientAddCmd = &cobra.Command{
	Use:   "add <patient-id>",
	Short: "Add a patient record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openPatientStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		err = st.Add(cmd.Context(), patient.Record{
			PatientID:        args[0],
			Name:             patientName,
			Age:              patientAge,
			Sex:              patientSex,
			PastSurgeries:    patientSurgeries,
			AvgBloodPressure: patientBP,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added patient %s\n", args[0])
		return nil
	},
}

var patientNoteCmd = &cobra.Command{
	Use:   "note <patient-id> <note text...>",
	Short: "Append a note to a patient's history",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openPatientStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.AddNote(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Printf("Added note for %s\n", args[0])
		return nil
	},
}

var patientHistoryCmd = &cobra.Command{
	Use:   "history <patient-id>",
	Short: "Show the context block rendered for a patient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openPatientStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		history, err := st.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if history == "" {
			return fmt.Errorf("no record for patient %s", args[0])
		}
		fmt.Println(history)
		return nil
	},
}

var patientCompareCmd = &cobra.Command{
	Use:   "compare <patient-id>",
	Short: "Show the two most recent notes side by side",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openPatientStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		out, err := st.CompareNotes(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func openPatientStore() (*patient.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Patient.Path == "" {
		return nil, fmt.Errorf("patient store not configured: set patient.path in the config")
	}
	return patient.Open(cfg.Patient.Path)
}

func init() {
	rootCmd.AddCommand(patientCmd)
	patientCmd.AddCommand(patientAddCmd)
	patientCmd.AddCommand(patientNoteCmd)
	patientCmd.AddCommand(patientHistoryCmd)
	patientCmd.AddCommand(patientCompareCmd)

	patientAddCmd.Flags().StringVar(&patientName, "name", "", "patient name")
	patientAddCmd.Flags().IntVar(&patientAge, "age", 0, "patient age")
	patientAddCmd.Flags().StringVar(&patientSex, "sex", "", "patient sex")
	patientAddCmd.Flags().StringSliceVar(&patientSurgeries, "surgery", nil, "past surgery (repeatable)")
	patientAddCmd.Flags().StringVar(&patientBP, "bp", "", "average blood pressure, e.g. 120/80")
}
