package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "HUDDLE"

// Common is shared by both processes.
type Common struct {
	Mode string `mapstructure:"mode" validate:"oneof=release debug test"`
	// Listen is the address the HTTP server binds.
	Listen string `mapstructure:"listen" validate:"required,hostport"`
	// Advertise is the mailbox endpoint others send to. Empty means derived from the bound listener.
	Advertise   string `mapstructure:"advertise" validate:"omitempty,url"`
	Codec       string `mapstructure:"codec" validate:"oneof=json cbor"`
	LogLevel    string `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	MailboxSize int    `mapstructure:"mailbox_size" validate:"gt=0"`
}

func (c Common) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Coordinator.UndeliverablePolicy decides what happens to group members
// whose mailbox refuses a broadcast.
type Coordinator struct {
	Common              `mapstructure:",squash"`
	UndeliverablePolicy string        `mapstructure:"undeliverable_policy" validate:"oneof=keep kick"`
	SendTimeout         time.Duration `mapstructure:"send_timeout" validate:"gt=0"`
}

type Session struct {
	Common         `mapstructure:",squash"`
	Coordinator    string        `mapstructure:"coordinator" validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	InviteTimeout  time.Duration `mapstructure:"invite_timeout" validate:"gt=0"`
	DownloadDir    string        `mapstructure:"download_dir" validate:"required"`
}

func commonFlags(flags *pflag.FlagSet, listen string) {
	flags.String("config", "", "explicit config file (yaml)")
	flags.String("mode", "release", "gin mode: release|debug|test")
	flags.String("listen", listen, "http listen address")
	flags.String("advertise", "", "mailbox endpoint advertised to peers")
	flags.String("codec", "json", "wire codec: json|cbor")
	flags.String("log_level", "info", "log level")
	flags.Int("mailbox_size", 256, "inbox capacity")
}

// LoadCoordinator reads defaults, the optional config file, HUDDLE_* env and args, in rising priority.
func LoadCoordinator(args []string) (*Coordinator, error) {
	flags := pflag.NewFlagSet("coordinator", pflag.ContinueOnError)
	commonFlags(flags, "127.0.0.1:3553")
	flags.String("undeliverable_policy", "keep", "unreachable group members: keep|kick")
	flags.Duration("send_timeout", 2*time.Second, "bound on each outbound send")

	var cfg Coordinator
	if err := load("coordinator", flags, args, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadSession(args []string) (*Session, error) {
	flags := pflag.NewFlagSet("session", pflag.ContinueOnError)
	commonFlags(flags, "127.0.0.1:0")
	flags.String("coordinator", "ws://127.0.0.1:3553/ws/mailbox", "coordinator mailbox endpoint")
	flags.Duration("request_timeout", time.Second, "coordinator reply timeout")
	flags.Duration("invite_timeout", 20*time.Second, "invite answer timeout")
	flags.String("download_dir", ".", "where received files are written")

	var cfg Session
	if err := load("session", flags, args, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func load(role string, flags *pflag.FlagSet, args []string, out any) error {
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	fileName := v.GetString("config")
	if fileName == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/%s.%s.yaml", role, env)
	}
	v.SetConfigFile(fileName)
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Info().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("invalid %s config: %w", role, err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hostport", func(fl validator.FieldLevel) bool {
		_, _, err := net.SplitHostPort(fl.Field().String())
		return err == nil
	})
	return v
}
