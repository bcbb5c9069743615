package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jervi/orca/internal/config"
	"github.com/jervi/orca/internal/fiat"
	"github.com/jervi/orca/internal/front50"
	"github.com/jervi/orca/internal/logging"
	"github.com/jervi/orca/internal/runner"
	"github.com/jervi/orca/internal/task"
	"github.com/jervi/orca/pkg/models"
)

func newRunCommand() *cobra.Command {
	var pipelineFile string
	var user string
	var skipMonitor bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Save a pipeline's managed service account, then verify the write propagated",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log := logrus.NewEntry(logging.NewLogger(cfg.Log.Level))

			raw, err := os.ReadFile(pipelineFile)
			if err != nil {
				return fmt.Errorf("failed to read pipeline definition: %w", err)
			}
			var pipeline models.Pipeline
			if err := json.Unmarshal(raw, &pipeline); err != nil {
				return fmt.Errorf("pipeline definition must be a json object: %w", err)
			}

			var store front50.Client
			if cfg.Front50.Enabled {
				store = front50.NewHTTPClient(cfg.Front50.BaseURL, &http.Client{
					Timeout: time.Duration(cfg.Front50.TimeoutMs) * time.Millisecond,
				})
			}
			var permissions fiat.PermissionEvaluator
			if cfg.Fiat.Enabled {
				permissions = fiat.NewHTTPEvaluator(cfg.Fiat.BaseURL, &http.Client{
					Timeout: time.Duration(cfg.Fiat.TimeoutMs) * time.Millisecond,
				})
			}

			name, _ := pipeline["name"].(string)
			stage := &task.Stage{
				ExecutionID: uuid.NewString(),
				StartTime:   time.Now().UnixMilli(),
				Context: map[string]any{
					"pipeline":      base64.StdEncoding.EncodeToString(raw),
					"pipeline.id":   pipeline.ID(),
					"pipeline.name": name,
				},
				TriggerUser: user,
			}
			log = log.WithField("executionId", stage.ExecutionID)

			r := runner.New(log)

			save := task.NewSaveServiceAccountTask(fiat.EnabledStatus(cfg.Fiat.Enabled), store, permissions, log)
			result, err := r.Run(cmd.Context(), save, stage)
			if err != nil {
				return err
			}
			if result.Status != task.StatusSucceeded {
				return fmt.Errorf("saving service account ended %s", result.Status)
			}
			for key, value := range result.Context {
				stage.Context[key] = value
			}
			log.WithField("serviceAccount", stage.StringValue("pipeline.serviceAccount")).
				Info("service account saved")

			if skipMonitor {
				return nil
			}

			policy := task.DefaultFreshnessPolicy()
			policy.SuccessThreshold = cfg.Tasks.MonitorStore.SuccessThreshold
			policy.GracePeriod = cfg.GracePeriod()

			monitor := task.NewMonitorStoreTask(store, policy, log)
			result, err = r.Run(cmd.Context(), monitor, stage)
			if err != nil {
				return err
			}
			if result.Status != task.StatusSucceeded {
				return fmt.Errorf("verifying the write ended %s", result.Status)
			}
			log.Info("write verified")
			return nil
		},
	}

	cmd.Flags().StringVar(&pipelineFile, "pipeline-file", "", "path to the pipeline definition json")
	cmd.Flags().StringVar(&user, "user", "", "user triggering the execution")
	cmd.Flags().BoolVar(&skipMonitor, "skip-monitor", false, "do not verify that the write propagated")
	_ = cmd.MarkFlagRequired("pipeline-file")

	return cmd
}
