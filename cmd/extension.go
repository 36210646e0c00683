package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Environment passed to extensions, so that they read the same store as fin.
const (
	EnvConfigFile = "FIN_CONFIG"
	EnvStorePath  = "ANALYTICS_STORE_PATH"
	EnvCurrency   = "ANALYTICS_CURRENCY"
	EnvLogLevel   = "ANALYTICS_LOG_LEVEL"
)

// RunExtension attempts to find and execute an external fin-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "fin-" + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv turns the global flags that were set into environment variables.
func extensionEnv() []string {
	var env []string
	if *configFile != "" {
		env = append(env, EnvConfigFile+"="+*configFile)
	}
	if *storePath != "" {
		env = append(env, EnvStorePath+"="+*storePath)
	}
	if *currency != "" {
		env = append(env, EnvCurrency+"="+*currency)
	}
	if *Verbose {
		env = append(env, EnvLogLevel+"=debug")
	}
	return env
}
