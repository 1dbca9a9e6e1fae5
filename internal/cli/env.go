package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
)

func runEnv(ctx context.Context, args []string) error {
	envFlags := flag.NewFlagSet("env", flag.ContinueOnError)
	var setPairs stringSliceFlag
	var unsetKeys stringSliceFlag
	var helpFlag bool
	envFlags.Var(&setPairs, "set", "set a variable (repeatable)")
	envFlags.Var(&unsetKeys, "unset", "remove a variable (repeatable)")
	envFlags.BoolVar(&helpFlag, "help", false, "show help")
	envFlags.BoolVar(&helpFlag, "h", false, "show help")
	envFlags.SetOutput(os.Stdout)
	envFlags.Usage = func() {
		printEnvHelp(os.Stdout)
	}
	if err := envFlags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if helpFlag {
		printEnvHelp(os.Stdout)
		return nil
	}
	if envFlags.NArg() != 1 {
		return fmt.Errorf("usage: agentwt env <name> [--set KEY=VALUE]... [--unset KEY]...")
	}
	name := envFlags.Arg(0)

	state, err := loadRepoState(ctx)
	if err != nil {
		return err
	}
	entry, err := state.reg.Get(name)
	if err != nil {
		return err
	}
	if entry.Env == nil {
		entry.Env = map[string]string{}
	}

	for _, pair := range setPairs {
		key, value, err := parseEnvPair(pair)
		if err != nil {
			return err
		}
		entry.Env[key] = value
	}
	for _, key := range unsetKeys {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("empty env key")
		}
		delete(entry.Env, key)
	}

	if len(setPairs) > 0 || len(unsetKeys) > 0 {
		state.reg.Upsert(name, entry)
		if err := state.save(); err != nil {
			return err
		}
	}

	keys := make([]string, 0, len(entry.Env))
	for key := range entry.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		fmt.Fprintf(os.Stdout, "no env vars set for %s\n", name)
		return nil
	}
	for _, key := range keys {
		fmt.Fprintf(os.Stdout, "%s=%s\n", key, entry.Env[key])
	}
	return nil
}

func parseEnvPair(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid env pair %q, expected KEY=VALUE", pair)
	}
	return key, value, nil
}
