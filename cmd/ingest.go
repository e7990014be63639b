package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/supplier-cli/internal/fetcher"
	"github.com/sells-group/supplier-cli/internal/ingest"
	"github.com/sells-group/supplier-cli/internal/model"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Normalize a raw table into a workspace",
	Long:  "Applies column mappings to a CSV or XLSX file, normalizes the data into the canonical schema, and stores the result in a workspace. Without --mappings the suggested mappings are applied as-is; review them first with analyze.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		table, err := fetcher.ReadTableFile(ctx, args[0])
		if err != nil {
			return err
		}

		mappingsPath, _ := cmd.Flags().GetString("mappings")
		useLLM, _ := cmd.Flags().GetBool("llm")
		caseFlag, _ := cmd.Flags().GetString("case")
		workspaceName, _ := cmd.Flags().GetString("workspace")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		var mappings []model.ColumnMapping
		if mappingsPath != "" {
			if mappings, err = loadMappingsFile(mappingsPath); err != nil {
				return err
			}
		} else {
			strategy, err := buildStrategy(useLLM)
			if err != nil {
				return err
			}
			analysis, err := strategy.Analyze(ctx, table)
			if err != nil {
				return err
			}
			mappings = analysis.Mappings
			zap.S().Warnw("ingest: applying suggested mappings without review",
				"file", args[0], "columns", len(mappings))
		}

		caseHint := model.CaseUnknown
		if caseFlag != "" {
			caseHint = model.CaseType(caseFlag)
			switch caseHint {
			case model.CaseMixed, model.CaseDelayOnly, model.CaseDefectsOnly:
			default:
				return eris.Errorf("invalid --case %q (mixed, delay_only, defects_only)", caseFlag)
			}
		}

		normalizer := &ingest.Normalizer{DateParseSuccessRatio: cfg.Ingest.DateParseSuccessRatio}
		result, err := normalizer.Normalize(table, mappings, caseHint)
		if err != nil {
			return err
		}

		if !result.Success {
			if err := printJSON(result); err != nil {
				return err
			}
			return eris.New("normalization failed; see warnings")
		}

		if !dryRun {
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			ws, err := st.GetWorkspaceByName(ctx, workspaceName)
			if err != nil {
				return err
			}
			if ws == nil {
				if ws, err = st.CreateWorkspace(ctx, workspaceName); err != nil {
					return err
				}
			}
			if err := st.SaveDataset(ctx, ws.ID, result.Dataset, result); err != nil {
				return err
			}
			zap.S().Infow("ingest: dataset saved",
				"workspace", ws.Name, "rows", len(result.Dataset.Records))
		}

		return printJSON(result)
	},
}

// loadMappingsFile reads approved mappings from a YAML file and validates
// them before anything touches the data.
func loadMappingsFile(path string) ([]model.ColumnMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read mappings %s", path)
	}

	var doc struct {
		Mappings []model.ColumnMapping `yaml:"mappings"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "parse mappings %s", path)
	}
	if len(doc.Mappings) == 0 {
		return nil, eris.Errorf("no mappings in %s", path)
	}
	if err := ingest.ValidateApproved(doc.Mappings); err != nil {
		return nil, err
	}
	return doc.Mappings, nil
}

func init() {
	ingestCmd.Flags().String("workspace", "default", "workspace to store the dataset in")
	ingestCmd.Flags().String("mappings", "", "YAML file with approved column mappings")
	ingestCmd.Flags().String("case", "", "force the case classification (mixed, delay_only, defects_only)")
	ingestCmd.Flags().Bool("llm", false, "use the Anthropic API for mapping suggestions when --mappings is not given")
	ingestCmd.Flags().Bool("dry-run", false, "normalize and print the result without saving")
	rootCmd.AddCommand(ingestCmd)
}
