package app

import (
	"context"
	_ "embed"
	"os"

	"github.com/campusconnect/loginflow/internal/devserver"
	"github.com/campusconnect/loginflow/internal/pkg/clock"
	"github.com/campusconnect/loginflow/internal/pkg/config"
	"github.com/campusconnect/loginflow/internal/pkg/goroutine"
	"github.com/campusconnect/loginflow/internal/pkg/hash"
	"github.com/campusconnect/loginflow/internal/pkg/instrument"
	"github.com/campusconnect/loginflow/internal/pkg/jwt"
	"github.com/campusconnect/loginflow/internal/pkg/uid"
	"github.com/campusconnect/loginflow/internal/pkg/validator"
	"github.com/campusconnect/loginflow/internal/verification"
	"github.com/campusconnect/loginflow/internal/verification/inbound"
)

//go:embed config.default.yaml
var defaultConfig []byte

func (a *App) initConfig() {
	if a.opts.ConfigPath == "" {
		cfg, err := config.NewViperFromBytes("yaml", defaultConfig)
		a.exitOnError(err, "failed to init embedded config")
		a.config = cfg
		return
	}

	cfg, err := config.NewViper(a.opts.ConfigPath)
	a.exitOnError(err, "failed to init config")
	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	a.exitOnError(err, "failed to init instrumentation")
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.max_goroutine"))

	v10, err := validator.NewV10Validator(a.config.GetArray("modules.verification.allowed_domains"))
	a.exitOnError(err, "failed to init validation v10 validator")
	a.validator = v10
}

func (a *App) initDevServer() {
	if !a.opts.DevServer {
		return
	}

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("devserver.jwt_secret")),
		Issuer:    a.config.GetString("devserver.jwt_issuer"),
		Audiences: a.config.GetArray("devserver.jwt_audiences"),
		TTL:       a.config.GetMinute("devserver.jwt_ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	a.exitOnError(err, "failed to init devserver jwt")

	store, err := devserver.NewStore(a.config.GetInt64("devserver.node_id"), a.clock)
	a.exitOnError(err, "failed to init devserver store")

	a.devServer = devserver.New(devserver.Dependency{
		Config: a.config,
		Store:  store,
		Bcrypt: hash.NewBcrypt(a.config.GetInt("devserver.bcrypt_cost")),
		JWT:    signer,
	})
}

func (a *App) initModules() {
	uc, err := verification.New(verification.Dependency{
		Goroutine:  a.goroutine,
		Config:     a.config,
		Instrument: a.ins,
		UUID:       a.uuid,
		Validator:  a.validator,
	})
	a.exitOnError(err, "failed to init verification module")

	a.usecase = uc
	a.cli = inbound.NewCLI(uc, os.Stdin, os.Stdout)
}

func (a *App) initClosers() {
	if a.devServer != nil {
		a.addCloser("devserver", a.devServer.Shutdown)
	}

	a.addCloser("goroutine", func(ctx context.Context) error {
		done := make(chan error, 1)
		go func() { done <- a.goroutine.Wait() }()

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	a.addCloser("instrument", a.ins.Shutdown)
	a.addCloser("config", func(context.Context) error { return a.config.Close() })
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, struct {
		name string
		fn   func(context.Context) error
	}{name, fn})
}
