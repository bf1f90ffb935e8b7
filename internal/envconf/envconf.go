package envconf

import (
	"errors"
	"time"

	"github.com/joeshaw/envdecode"
)

type ArgoCDConf struct {
	// Backend selects how the controller is reached: "cli" runs the argocd binary,
	// "kube" talks to the Application resources through the Kubernetes API
	Backend        string        `env:"ARGOCD_BACKEND,default=cli"`
	Binary         string        `env:"ARGOCD_BINARY,default=argocd"`
	Server         string        `env:"ARGOCD_SERVER"`
	AuthToken      string        `env:"ARGOCD_AUTH_TOKEN"`
	GRPCWeb        bool          `env:"ARGOCD_GRPC_WEB,default=false"`
	Insecure       bool          `env:"ARGOCD_INSECURE,default=false"`
	Namespace      string        `env:"ARGOCD_NAMESPACE,default=argocd"`
	RequestTimeout time.Duration `env:"ARGOCD_REQUEST_TIMEOUT,default=60s"`
}

type RedisConf struct {
	Host     string        `env:"REDIS_HOST,default=localhost"`
	Port     string        `env:"REDIS_PORT,default=6379"`
	Username string        `env:"REDIS_USER"`
	Password string        `env:"REDIS_PASS"`
	DB       int           `env:"REDIS_DB,default=0"`
	TTL      time.Duration `env:"REDIS_TTL,default=720h"`
}

type DBConf struct {
	SQLLite     bool   `env:"SQL_LITE,default=false"`
	SQLLitePath string `env:"SQL_LITE_PATH,default=./argocd-deployer.db"`

	DbHost    string `env:"DB_HOST,default=localhost"`
	DbPort    int    `env:"DB_PORT,default=5432"`
	DbUser    string `env:"DB_USER,default=argocd-deployer"`
	DbPass    string `env:"DB_PASS"`
	DbName    string `env:"DB_NAME,default=argocd_deployer"`
	DbSSLMode string `env:"DB_SSL_MODE,default=disable"`
}

type MetadataConf struct {
	// Backend is one of buildkite, redis, sql or memory
	Backend        string `env:"METADATA_BACKEND,default=buildkite"`
	BuildkiteAgent string `env:"BUILDKITE_AGENT_BINARY,default=buildkite-agent"`

	RedisConf RedisConf
	DBConf    DBConf
}

type NotificationConf struct {
	SlackWebhookURL string        `env:"SLACK_WEBHOOK_URL"`
	SlackUsername   string        `env:"SLACK_USERNAME,default=argocd-deployer"`
	SlackTimeout    time.Duration `env:"SLACK_TIMEOUT,default=5s"`
}

type MetricsConf struct {
	PushgatewayURL string `env:"PUSHGATEWAY_URL"`
	Job            string `env:"PUSHGATEWAY_JOB,default=argocd_deployer"`
}

type CheckpointConf struct {
	// Backend is buildkite or none
	Backend         string `env:"CHECKPOINT_BACKEND,default=buildkite"`
	RollbackCommand string `env:"CHECKPOINT_ROLLBACK_COMMAND,default=argocd-deployer"`
}

// BuildConf is populated from the variables Buildkite exports to every job
type BuildConf struct {
	Number   string `env:"BUILDKITE_BUILD_NUMBER"`
	URL      string `env:"BUILDKITE_BUILD_URL"`
	Pipeline string `env:"BUILDKITE_PIPELINE_SLUG"`
	Branch   string `env:"BUILDKITE_BRANCH"`
	Commit   string `env:"BUILDKITE_COMMIT"`
	Creator  string `env:"BUILDKITE_BUILD_CREATOR"`
}

// OperationConf holds defaults for the command line flags of deploy and rollback
type OperationConf struct {
	App                 string `env:"DEPLOYER_APP"`
	RollbackMode        string `env:"DEPLOYER_ROLLBACK_MODE"`
	TargetRevision      string `env:"DEPLOYER_TARGET_REVISION"`
	Timeout             int    `env:"DEPLOYER_TIMEOUT,default=300"`
	HealthCheckInterval int    `env:"DEPLOYER_HEALTH_CHECK_INTERVAL,default=30"`
	HealthCheckTimeout  int    `env:"DEPLOYER_HEALTH_CHECK_TIMEOUT,default=300"`
	CollectLogs         bool   `env:"DEPLOYER_COLLECT_LOGS,default=false"`
	UploadArtifacts     bool   `env:"DEPLOYER_UPLOAD_ARTIFACTS,default=false"`
	LogLines            int    `env:"DEPLOYER_LOG_LINES,default=1000"`
	SlackChannel        string `env:"DEPLOYER_SLACK_CHANNEL"`
	ArtifactsDir        string `env:"DEPLOYER_ARTIFACTS_DIR,default=argocd-deployer-logs"`
}

type EnvDecoderConf struct {
	Debug     bool   `env:"DEBUG,default=false"`
	SentryDSN string `env:"SENTRY_DSN"`
	SentryEnv string `env:"SENTRY_ENV,default=dev"`

	ArgoCDConf       ArgoCDConf
	MetadataConf     MetadataConf
	NotificationConf NotificationConf
	MetricsConf      MetricsConf
	CheckpointConf   CheckpointConf
	BuildConf        BuildConf
	OperationConf    OperationConf
}

// Decode reads the configuration from the environment
func Decode() (*EnvDecoderConf, error) {
	conf := &EnvDecoderConf{}

	if err := envdecode.Decode(conf); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, err
	}

	return conf, nil
}
