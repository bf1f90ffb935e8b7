package orchestrator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/porter-dev/argocd-deployer/pkg/alerter"
	"k8s.io/apimachinery/pkg/util/validation"
)

type Mode string

const (
	ModeDeploy   Mode = "deploy"
	ModeRollback Mode = "rollback"
)

type RollbackMode string

const (
	RollbackAuto   RollbackMode = "auto"
	RollbackManual RollbackMode = "manual"
)

// Defaults applied by the CLI when a flag is not given
const (
	DefaultTimeout             = 300
	DefaultHealthCheckInterval = 30
	DefaultHealthCheckTimeout  = 300
	DefaultLogLines            = 1000
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

		if name == "" || name == "-" {
			return fld.Name
		}

		return name
	})

	_ = validate.RegisterValidation("slackchannel", func(fl validator.FieldLevel) bool {
		return alerter.IsSlackChannel(fl.Field().String())
	})

	// Application is a Kubernetes resource, so its name is a DNS-1123 subdomain
	_ = validate.RegisterValidation("appname", func(fl validator.FieldLevel) bool {
		return len(validation.IsDNS1123Subdomain(fl.Field().String())) == 0
	})
}

// Options configure one invocation. Durations are in seconds.
type Options struct {
	App            string       `json:"app" validate:"required,appname"`
	Mode           Mode         `json:"mode" validate:"oneof=deploy rollback"`
	RollbackMode   RollbackMode `json:"rollback_mode" validate:"required,oneof=auto manual"`
	TargetRevision string       `json:"target_revision" validate:"required_if=Mode rollback"`

	Timeout             int `json:"timeout" validate:"min=30,max=3600"`
	HealthCheckInterval int `json:"health_check_interval" validate:"min=10,max=300"`
	HealthCheckTimeout  int `json:"health_check_timeout" validate:"min=60,max=1800"`

	CollectLogs     bool `json:"collect_logs"`
	UploadArtifacts bool `json:"upload_artifacts"`
	LogLines        int  `json:"log_lines" validate:"min=100,max=10000"`

	SlackChannel string `json:"slack_channel" validate:"omitempty,slackchannel"`
}

// DefaultOptions returns options with every bound at its default
func DefaultOptions(app string, mode Mode) Options {
	return Options{
		App:                 app,
		Mode:                mode,
		Timeout:             DefaultTimeout,
		HealthCheckInterval: DefaultHealthCheckInterval,
		HealthCheckTimeout:  DefaultHealthCheckTimeout,
		LogLines:            DefaultLogLines,
	}
}

// Validate defaults the rollback mode of deploys to auto and checks every bound
func (o *Options) Validate() error {
	o.App = strings.TrimSpace(o.App)
	o.TargetRevision = strings.TrimSpace(o.TargetRevision)

	if o.Mode == ModeDeploy && o.RollbackMode == "" {
		o.RollbackMode = RollbackAuto
	}

	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors

	if !errors.As(err, &fieldErrs) {
		return &ConfigError{Problems: []string{err.Error()}}
	}

	problems := make([]string, 0, len(fieldErrs))

	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}

	return &ConfigError{Problems: problems}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "appname":
		return fmt.Sprintf("%s must be a lowercase DNS-1123 name, got %q", fe.Field(), fe.Value())
	case "slackchannel":
		return fmt.Sprintf("%s must start with # or @ or be a channel ID, got %q", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func (o *Options) timeout() time.Duration {
	return time.Duration(o.Timeout) * time.Second
}

func (o *Options) healthCheckInterval() time.Duration {
	return time.Duration(o.HealthCheckInterval) * time.Second
}

func (o *Options) healthCheckTimeout() time.Duration {
	return time.Duration(o.HealthCheckTimeout) * time.Second
}
