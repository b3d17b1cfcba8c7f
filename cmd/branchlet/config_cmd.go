package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tsdevendra1/branchlet/internal/config"
	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/log"
	"github.com/Tsdevendra1/branchlet/internal/output"
	"github.com/Tsdevendra1/branchlet/internal/ui/prompt"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage branchlet configuration.

Global config: ~/.branchlet/settings.json ($BRANCHLET_CONFIG_DIR overrides the directory)
Local config:  .branchlet.json in the repository root

Local values override global values field by field.`,
		Example: `  branchlet config show                        # Effective config
  branchlet config show --format yaml
  branchlet config set branchPrefix feat/      # Global
  branchlet config set --local postCreateCmd '["npm install"]'
  branchlet config init --local                # Starter .branchlet.json`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigSchemaCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			var (
				path    string
				content []byte
				err     error
			)
			if local {
				root, err := repoRoot(ctx)
				if err != nil {
					return err
				}
				path = config.LocalPath(root)
				content = []byte(config.DefaultLocalConfig())
			} else {
				path = resolver(ctx).GlobalPath()
				content, err = json.MarshalIndent(config.Default(), "", "  ")
				if err != nil {
					return err
				}
				content = append(content, '\n')
			}

			if stdout {
				_, err := out.Writer().Write(content)
				return err
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config file already exists: %s (use -f to overwrite)", path)
				}
			}
			if local {
				err = os.WriteFile(path, content, 0644)
			} else {
				err = config.Save(config.Default(), path)
			}
			if err != nil {
				return err
			}
			l.Info("created config file", "path", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print the config instead of writing it")
	cmd.Flags().BoolVar(&local, "local", false, "Create .branchlet.json in the repository root")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		format string
		global bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Long: `Print the effective config.

Inside a repository the local .branchlet.json is merged in unless --global
is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := resolver(ctx)

			var (
				cfg config.Config
				err error
			)
			root, rootErr := repoRoot(ctx)
			if global || rootErr != nil {
				cfg, err = r.Global()
			} else {
				cfg, err = r.Resolve(root)
			}
			if err != nil {
				return err
			}
			for _, w := range r.Warnings() {
				log.FromContext(ctx).Warn(w)
			}
			return writeConfig(output.FromContext(ctx).Writer(), cfg, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, toml or yaml")
	cmd.Flags().BoolVarP(&global, "global", "g", false, "Ignore the local config")
	cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{"json", "toml", "yaml"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func writeConfig(w io.Writer, cfg config.Config, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "toml":
		return toml.NewEncoder(w).Encode(cfg)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (valid: json, toml, yaml)", format)
}

func newConfigPathCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := resolver(ctx).GlobalPath()
			if local {
				root, err := repoRoot(ctx)
				if err != nil {
					return err
				}
				path = config.LocalPath(root)
			}
			output.FromContext(ctx).Println(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Print the local config path")

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "set KEY [VALUE]",
		Short: "Set a config value",
		Long: `Set a config value.

VALUE is read as JSON when it parses ('["npm install"]', 'true') and as a
plain string otherwise. Without VALUE the current value is offered for
editing.`,
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			r := resolver(ctx)
			key := args[0]

			base, err := r.Global()
			if err != nil {
				return err
			}
			var root string
			if local {
				if root, err = repoRoot(ctx); err != nil {
					return err
				}
				if base, err = r.Resolve(root); err != nil {
					return err
				}
			}

			apply := func(raw string) (config.Config, error) {
				cfg, err := config.Set(base, key, raw)
				if err != nil {
					return cfg, err
				}
				return cfg, cfg.Validate()
			}

			var raw string
			if len(args) == 2 {
				raw = args[1]
			} else {
				if !isInteractive() {
					return fmt.Errorf("missing value for %s", key)
				}
				if !slices.Contains(config.Keys(), key) {
					_, err := config.Set(base, key, "")
					return err
				}
				current, err := fieldJSON(base, key)
				if err != nil {
					return err
				}
				res, err := prompt.TextInput(key+":", current, func(v string) error {
					_, err := apply(v)
					return err
				})
				if err != nil {
					return err
				}
				if res.Cancelled {
					return nil
				}
				raw = res.Value
			}

			cfg, err := apply(raw)
			if err != nil {
				return err
			}

			if local {
				path := config.LocalPath(root)
				if err := writeLocalKey(path, cfg, key); err != nil {
					return err
				}
				l.Info("updated local config", "key", key, "path", path)
				return nil
			}
			if err := config.Save(cfg, r.GlobalPath()); err != nil {
				return err
			}
			l.Info("updated global config", "key", key, "path", r.GlobalPath())
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Write to the repository's .branchlet.json")

	return cmd
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Schema()
			if err != nil {
				return err
			}
			out := output.FromContext(cmd.Context())
			out.Println(string(data))
			return nil
		},
	}
}

// resolver returns the context resolver, or a fresh one for the default path.
func resolver(ctx context.Context) *config.Resolver {
	if r := config.ResolverFromContext(ctx); r != nil {
		return r
	}
	path, err := config.GlobalPath()
	if err != nil {
		path = config.GlobalConfigFileName
	}
	return config.NewResolver(path)
}

func repoRoot(ctx context.Context) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	info, err := git.NewService(wd).CurrentWorktreeInfo(ctx)
	if err != nil {
		return "", err
	}
	return info.MainRepoPath, nil
}

// fieldJSON returns the JSON encoding of one config field.
func fieldJSON(cfg config.Config, key string) (string, error) {
	fields, err := configFields(cfg)
	if err != nil {
		return "", err
	}
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown key %q", key)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, nil
	}
	return string(raw), nil
}

func configFields(cfg config.Config) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	return fields, json.Unmarshal(data, &fields)
}

// writeLocalKey stores key from cfg in the local file at path. Other keys
// in the file are kept so it stays a partial override.
func writeLocalKey(path string, cfg config.Config, key string) error {
	doc := map[string]json.RawMessage{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			return &config.Error{Path: path, Err: err}
		}
	case !errors.Is(err, os.ErrNotExist):
		return &config.Error{Path: path, Err: err}
	}

	fields, err := configFields(cfg)
	if err != nil {
		return err
	}
	doc[key] = fields[key]

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(out, '\n'), 0644)
}
