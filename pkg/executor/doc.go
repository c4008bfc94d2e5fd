// Package executor runs the external programs dbt-coves drives: git, dbt,
// sqlfluff and pre-commit.
//
// Commands run synchronously and inherit the process environment plus any
// variables set on the Executor or the Cmd. A command that exits with a
// nonzero status yields an *ExitError carrying the exit code and the tail of
// its stderr; a program missing from PATH yields an error wrapping
// ErrNotFound.
//
// # Usage Example
//
//	exec := executor.New(executor.Config{Logger: logger})
//
//	version, err := exec.Output(ctx, executor.Cmd{Name: "dbt", Args: []string{"--version"}})
//	if errors.Is(err, executor.ErrNotFound) {
//		return errors.New("dbt is not installed")
//	}
//
//	err = exec.Run(ctx, executor.Cmd{
//		Dir:    projectDir,
//		Name:   "sqlfluff",
//		Args:   []string{"fix", "models"},
//		Stdout: os.Stdout,
//		Stderr: os.Stderr,
//	})
//
//	var exitErr *executor.ExitError
//	if errors.As(err, &exitErr) {
//		fmt.Printf("sqlfluff exited with %d\n", exitErr.Code)
//	}
package executor
