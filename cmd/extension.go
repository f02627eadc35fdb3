package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/etnz/brokerage/config"
)

// ExtensionPrefix prefixes the name of external tsim-<subcommand> binaries.
const ExtensionPrefix = "tsim-"

// RunExtension attempts to find and execute an external tsim-<subcommand> binary.
// Global flags are passed as the environment variables of the configuration,
// so that the extension resolves the same settings.
//
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := ExtensionPrefix + subcommand

	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cmd.Env = os.Environ()
	setenv := func(key, value string) {
		if value != "" {
			cmd.Env = append(cmd.Env, key+"="+value)
		}
	}
	setenv(config.EnvConfig, *configFile)
	setenv(config.EnvOwner, *ownerFlag)
	setenv(config.EnvCurrency, *currencyFlag)
	setenv(config.EnvPricesFile, *pricesFile)
	setenv(config.EnvPricesPath, *pricesPath)
	if *Verbose {
		setenv(config.EnvLog, "debug")
	}

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}
