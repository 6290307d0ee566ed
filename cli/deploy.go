package cli

import (
	"fmt"

	"mlpipe/core/deploy"
	"mlpipe/core/models"
	"mlpipe/core/monitoring"
	"mlpipe/storage"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	deployModelData     string
	deployJobInfoFile   string
	deployEndpointName  string
	deployInstanceType  string
	deployInstanceCount int
	deployUpdate        bool
	deploySourceDir     string
	deployEntry         string
	deployInfoFile      string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Create or update a hosted endpoint for a trained model",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx := cmd.Context()

		if deployEndpointName == "" {
			deployEndpointName = cfg.Endpoint.Name
		}
		if deployInstanceType == "" {
			deployInstanceType = cfg.Endpoint.InstanceType
		}
		if deployInstanceCount <= 0 {
			deployInstanceCount = cfg.Endpoint.InstanceCount
		}

		if err := requireSourceDir(deploySourceDir); err != nil {
			return err
		}

		modelData, err := resolveModelData()
		if err != nil {
			return err
		}

		client, err := newPlatform(ctx)
		if err != nil {
			return err
		}
		history, closeHistory := openHistory()
		defer closeHistory()

		deployer := deploy.NewDeployer(
			client,
			monitoring.NewEndpointWaiter(client, history, cfg.Polling.Interval),
			storage.NewSourceBundler(client),
			deploy.Config{
				Region:       client.Region(),
				ModelPrefix:  cfg.Naming.ModelPrefix,
				ConfigPrefix: cfg.Naming.EndpointConfigPrefix,
			},
		)
		deployer.InfoPath = deployInfoFile

		ep, err := deployer.Deploy(ctx, models.DeploymentSpec{
			ModelData:        modelData,
			RoleARN:          cfg.AWS.RoleARN,
			EndpointName:     deployEndpointName,
			InstanceType:     deployInstanceType,
			InstanceCount:    deployInstanceCount,
			AllowUpdate:      deployUpdate,
			SourceDir:        deploySourceDir,
			CodeLocation:     cfg.CodePath(),
			EntryPoint:       deployEntry,
			FrameworkVersion: cfg.Training.FrameworkVersion,
			PythonVersion:    cfg.Training.PythonVersion,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Endpoint %s is %s\n", ep.Name, ep.Status)
		fmt.Printf("Info written to %s\n", deployInfoFile)
		return nil
	},
}

// resolveModelData prefers --model-data, then the artifact of a completed training record
func resolveModelData() (string, error) {
	if deployModelData != "" {
		return deployModelData, nil
	}
	info, err := storage.ReadTrainingJobInfo(deployJobInfoFile)
	if err != nil {
		return "", fmt.Errorf("no --model-data given and %w", err)
	}
	if info.Status != "" && info.Status != models.JobStatusCompleted {
		return "", fmt.Errorf("training job %s ended %s; nothing to deploy", info.JobName, info.Status)
	}
	if info.ModelArtifacts == "" {
		return "", fmt.Errorf("%s has no model artifacts", deployJobInfoFile)
	}
	log.WithFields(log.Fields{
		"job":        info.JobName,
		"model_data": info.ModelArtifacts,
	}).Info("Using model from training record")
	return info.ModelArtifacts, nil
}

func init() {
	deployCmd.Flags().StringVar(&deployModelData, "model-data", "", "s3:// URI of model.tar.gz (default: from the training record)")
	deployCmd.Flags().StringVar(&deployJobInfoFile, "job-info", storage.TrainingJobInfoFile, "Training record to read the model from")
	deployCmd.Flags().StringVar(&deployEndpointName, "endpoint-name", "", "Endpoint name (default ENDPOINT_NAME)")
	deployCmd.Flags().StringVar(&deployInstanceType, "instance-type", "", "Hosting instance type (default ENDPOINT_INSTANCE_TYPE)")
	deployCmd.Flags().IntVar(&deployInstanceCount, "instance-count", 0, "Hosting instance count (default ENDPOINT_INSTANCE_COUNT)")
	deployCmd.Flags().BoolVar(&deployUpdate, "update-endpoint", false, "Update the endpoint if it already exists")
	deployCmd.Flags().StringVar(&deploySourceDir, "source-dir", defaultSourceDir, "Local directory with the inference code")
	deployCmd.Flags().StringVar(&deployEntry, "entry-point", "inference.py", "Inference script inside the source dir")
	deployCmd.Flags().StringVar(&deployInfoFile, "info-file", storage.EndpointInfoFile, "Where to write the endpoint record")
	rootCmd.AddCommand(deployCmd)
}
