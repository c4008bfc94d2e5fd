// Package cmd declares the dbt-coves commands.
//
// Each command is a function returning a *dispatch.CommandSpec, provided to
// the fx graph in the "commands" value group. The dispatch package builds the
// command tree from that group, parses options and runs the selected task.
//
// # Available Commands
//
//   - init: scaffold .dbt_coves/config.yml and templates
//   - generate: write properties files for models that have none
//   - fix, check: run sqlfluff and pre-commit
//   - setup {all|ssh|git|dbt|vs-code|sqlfluff|pre-commit}: prepare a workstation
//   - extract, load: move Airbyte connections, sources and destinations
//     between an Airbyte instance and files
//
// # Shared Options
//
// Every command accepts --log-level, -v/--verbose, --config-path,
// --project-dir, --profiles-dir, -t/--target and --vars. Values resolve from
// the flag, then the bound environment variable, then the default.
//
// # Example Usage
//
//	dbt-coves init
//	dbt-coves setup all --templates ./templates
//	dbt-coves generate --config-path ./transform
//	AIRBYTE_HOST=http://airbyte dbt-coves extract --path ./airbyte
//	dbt-coves version
package cmd
