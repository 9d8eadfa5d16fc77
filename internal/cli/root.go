// Package cli implements the redcoll command: a small inspector for
// collections stored in Redis, raw or typed.
package cli

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/redcoll/conn"
)

const (
	Version = "0.3.0"

	// Wrap is the number of characters help text is wrapped at.
	Wrap int = 50
)

// Dialer opens an executor for cfg and returns a function releasing it.
type Dialer func(cfg conn.Config) (conn.Executor, func() error, error)

// DialRedis is the default Dialer.
func DialRedis(cfg conn.Config) (conn.Executor, func() error, error) {
	c, err := conn.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

type app struct {
	v       *viper.Viper
	dial    Dialer
	exec    conn.Executor
	release func() error
	log     *zap.Logger
}

// NewRootCmd builds the command tree. dial may be nil to use DialRedis.
func NewRootCmd(dial Dialer) *cobra.Command {
	if dial == nil {
		dial = DialRedis
	}
	a := &app{v: viper.New(), dial: dial}

	root := &cobra.Command{
		Use:   "redcoll",
		Short: "inspect Redis collections",
		Long: fmt.Sprintf(`redcoll (v%s)

Read and write Redis lists, sets, sorted sets and hashes,
optionally converting list elements to a typed view.`, Version),
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	setupConnFlags(root)

	root.AddCommand(
		versionCmd(),
		listCmd(a),
		setCmd(a),
		zsetCmd(a),
		hashCmd(a),
		typedCmd(a),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of redcoll",
		Annotations: map[string]string{
			"offline": "true",
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "redcoll v%s\n", Version)
		},
	}
}

func setupConnFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("addrs", "127.0.0.1:6379", WrapString("Comma-separated server addresses. Several addresses select cluster mode"))
	f.String("username", "", WrapString("ACL username"))
	f.String("password", "", WrapString("Password, prefer REDCOLL_PASSWORD"))
	f.Int("db", 0, WrapString("Database number (not available in cluster mode)"))
	f.String("master-name", "", WrapString("Sentinel master name; enables failover mode"))
	f.Int("pool-size", 0, WrapString("Connection pool size, 0 for the client default"))
	f.Duration("dial-timeout", conn.DefaultConfig().DialTimeout, WrapString("Timeout for establishing connections"))
	f.Duration("read-timeout", conn.DefaultConfig().ReadTimeout, WrapString("Timeout for socket reads"))
	f.Bool("verbose", false, WrapString("Log debug events to stderr"))
}

// initEnv loads .env files and maps REDCOLL_* variables onto flags.
func initEnv(v *viper.Viper) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v.SetEnvPrefix("redcoll")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

func connConfig(v *viper.Viper) conn.Config {
	var addrs []string
	for _, a := range strings.Split(v.GetString("addrs"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return conn.Config{
		Addrs:       addrs,
		Username:    v.GetString("username"),
		Password:    v.GetString("password"),
		DB:          v.GetInt("db"),
		MasterName:  v.GetString("master-name"),
		PoolSize:    v.GetInt("pool-size"),
		DialTimeout: v.GetDuration("dial-timeout"),
		ReadTimeout: v.GetDuration("read-timeout"),
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations["offline"] == "true" {
		return nil
	}
	initEnv(a.v)
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	log, err := newLogger(a.v.GetBool("verbose"))
	if err != nil {
		return err
	}
	a.log = log

	cfg := connConfig(a.v)
	exec, release, err := a.dial(cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	a.exec, a.release = exec, release
	a.log.Debug("connected", zap.Strings("addrs", cfg.Addrs), zap.Int("db", cfg.DB))
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	var err error
	if a.release != nil {
		err = a.release()
		a.release = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return err
}

// WrapString wraps text at Wrap characters.
func WrapString(text string) string {
	var lines []string
	var cur strings.Builder
	width := 0
	for _, word := range strings.Fields(text) {
		if width > 0 && width+1+len(word) > Wrap {
			lines = append(lines, cur.String())
			cur.Reset()
			width = 0
		}
		if width > 0 {
			cur.WriteByte(' ')
			width++
		}
		cur.WriteString(word)
		width += len(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return strings.Join(lines, "\n")
}
