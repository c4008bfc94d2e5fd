// Package dispatch holds the dbt-coves command tree and the runner that
// executes one invocation against it.
//
// Commands are declared as CommandSpec values. Groups (such as "setup") only
// hold children; leaves bind a Factory that builds the Task. The Registry
// validates the tree when specs are registered, so a malformed tree fails at
// startup with a ConfigurationError instead of at dispatch time.
//
// A Runner handles a single invocation:
//
//  1. "version", "--version" and "-V" print the banner and stop
//  2. the command path is resolved against the Registry
//  3. remaining tokens are parsed with options.Parse
//  4. the project config is loaded, only for commands with NeedsConfig
//  5. --log-level, when present, configures the process-wide log level
//  6. the task is constructed and run; its code is the exit code
//
// Errors from steps 2 to 4 are returned unwrapped so the top-level
// diag.Reporter can render them and pick the exit code.
package dispatch
