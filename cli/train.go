package cli

import (
	"context"
	"fmt"

	"mlpipe/core/models"
	"mlpipe/core/monitoring"
	"mlpipe/core/spec"
	"mlpipe/core/training"
	"mlpipe/storage"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// defaultSourceDir holds the container-side train.py and inference.py
const defaultSourceDir = "src"

var (
	trainSpecFile  string
	trainSourceDir string
	trainEntry     string
	trainInfoFile  string
	trainGate      bool
	trainWait      bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Submit a training job, wait for it and record its metrics",
}

// runTrainCmd is bound to trainCmd in init: trainingSpec reads trainCmd's flags,
// so referencing it from the trainCmd initializer would be an initialization cycle.
func runTrainCmd(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()

	jobSpec, err := trainingSpec()
	if err != nil {
		return err
	}
	if err := requireSourceDir(jobSpec.SourceDir); err != nil {
		return err
	}

	client, err := newPlatform(ctx)
	if err != nil {
		return err
	}
	history, closeHistory := openHistory()
	defer closeHistory()

	return runTrain(ctx, *jobSpec,
		training.NewSubmitter(client, storage.NewSourceBundler(client), client.Region()),
		monitoring.NewJobWaiter(client, history, monitoring.WaiterConfig{
			PollInterval:  cfg.Polling.Interval,
			MaxPollErrors: cfg.Polling.MaxPollErrors,
		}),
		storage.NewArtifactLocator(client),
	)
}

// runTrain submits the job and, with --wait, follows it to the hand-off record
func runTrain(ctx context.Context, jobSpec models.TrainingJobSpec, submitter training.JobSubmitter, waiter training.JobWaiter, locator training.MetricsLocator) error {
	if !trainWait {
		name, err := submitter.Submit(ctx, jobSpec)
		if err != nil {
			return err
		}
		fmt.Printf("Training job %s started. Not waiting for completion.\n", name)
		return nil
	}

	runner := training.NewRunner(submitter, waiter, locator)
	runner.InfoPath = trainInfoFile

	info, err := runner.Run(ctx, jobSpec)
	if err != nil {
		return err
	}

	fmt.Printf("Training job:    %s\n", info.JobName)
	fmt.Printf("Model artifacts: %s\n", info.ModelArtifacts)
	fmt.Printf("Accuracy:        %.4f\n", info.Metrics.Accuracy)
	if info.Metrics.Note != "" {
		fmt.Printf("Note:            %s\n", info.Metrics.Note)
	}
	fmt.Printf("Info written to %s\n", trainInfoFile)

	if trainGate {
		if err := training.CheckQuality(info, cfg.AccuracyThreshold); err != nil {
			return err
		}
		log.WithField("threshold", cfg.AccuracyThreshold).Info("Model passed the quality gate")
	}
	return nil
}

// trainingSpec builds the job spec from configuration, overlaid by the YAML spec file and flags.
// Hyperparameter keys are passed to train.py verbatim as flags, hence the hyphens.
func trainingSpec() (*models.TrainingJobSpec, error) {
	defaults := models.TrainingJobSpec{
		NamePrefix:       cfg.Naming.TrainingJobPrefix,
		EntryPoint:       trainEntry,
		SourceDir:        trainSourceDir,
		CodeLocation:     cfg.CodePath(),
		OutputPath:       cfg.ModelArtifactsPath(),
		RoleARN:          cfg.AWS.RoleARN,
		InstanceType:     cfg.Training.InstanceType,
		InstanceCount:    cfg.Training.InstanceCount,
		FrameworkVersion: cfg.Training.FrameworkVersion,
		PythonVersion:    cfg.Training.PythonVersion,
		Hyperparameters: map[string]interface{}{
			"n-estimators": cfg.Training.NEstimators,
			"max-depth":    cfg.Training.MaxDepth,
			"random-state": cfg.Training.RandomState,
			"test-size":    cfg.Training.TestSize,
		},
	}

	if trainSpecFile == "" {
		return &defaults, nil
	}
	jobSpec, err := spec.LoadJobSpec(trainSpecFile, defaults)
	if err != nil {
		return nil, err
	}
	// an explicit flag beats the file
	if trainCmd.Flags().Changed("source-dir") {
		jobSpec.SourceDir = trainSourceDir
	}
	return jobSpec, nil
}

func init() {
	trainCmd.RunE = runTrainCmd
	trainCmd.Flags().StringVar(&trainSpecFile, "spec", "", "YAML job specification file")
	trainCmd.Flags().StringVar(&trainSourceDir, "source-dir", defaultSourceDir, "Local directory with the training code")
	trainCmd.Flags().StringVar(&trainEntry, "entry-point", "train.py", "Training script inside the source dir")
	trainCmd.Flags().StringVar(&trainInfoFile, "info-file", storage.TrainingJobInfoFile, "Where to write the training job record")
	trainCmd.Flags().BoolVar(&trainGate, "gate", false, "Fail when accuracy is below ACCURACY_THRESHOLD")
	trainCmd.Flags().BoolVar(&trainWait, "wait", true, "Wait for the job and record its metrics; --wait=false only submits")
	rootCmd.AddCommand(trainCmd)
}
