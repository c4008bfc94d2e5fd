package consts

import "os"

const (
	// AppName is the binary and root command name
	AppName = "dbt-coves"

	// AppUsage is the one line description shown in root help
	AppUsage = "CLI tool for dbt users adopting analytics engineering best practices"
)

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// ModePrivate is used for secrets such as SSH private keys
	ModePrivate = os.FileMode(0o600)
)

const (
	// ConfigFileName is the project level dbt-coves configuration file
	ConfigFileName = ".dbt_coves.yml"

	// ConfigDirName is the dbt-coves project directory holding config.yml and templates
	ConfigDirName = ".dbt_coves"

	// NestedConfigFileName is the config file inside ConfigDirName
	NestedConfigFileName = "config.yml"

	// DefaultTemplatesDir is where user templates live, relative to the project dir
	DefaultTemplatesDir = ".dbt_coves/templates"

	// DbtProjectFileName is the dbt project definition file
	DbtProjectFileName = "dbt_project.yml"

	// ProfilesFileName is the dbt connection profiles file
	ProfilesFileName = "profiles.yml"
)

// Exit codes returned by the dbt-coves binary.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitConfig   = 3
	ExitExternal = 4
)

// Environment variables consulted by the setup tasks.
const (
	EnvWorkspacePath = "WORKSPACE_PATH"
	EnvUserFullname  = "USER_FULLNAME"
	EnvUserEmail     = "USER_EMAIL"
	EnvGitRepoURL    = "GIT_REPO_URL"
	EnvProfilePrefix = "DBT_PROFILE_"
	EnvAirbyteHost   = "AIRBYTE_HOST"
	EnvAirbytePort   = "AIRBYTE_PORT"
)
