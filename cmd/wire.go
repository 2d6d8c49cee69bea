package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bnema/ibuy-cli/internal/adapters/httpapi"
	"github.com/bnema/ibuy-cli/internal/adapters/realtime"
	"github.com/bnema/ibuy-cli/internal/adapters/render/catalog"
	"github.com/bnema/ibuy-cli/internal/adapters/render/chat"
	tomlrepo "github.com/bnema/ibuy-cli/internal/adapters/repo/toml"
	"github.com/bnema/ibuy-cli/internal/application"
	"github.com/bnema/ibuy-cli/internal/config"
	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/logging"
	"github.com/bnema/ibuy-cli/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var errSessionExpired = errors.New("session expired")

type app struct {
	cfg      config.Config
	logger   *zap.Logger
	closeLog func() error

	cookies  *tomlrepo.CookieJar
	api      *httpapi.Client
	realtime *realtime.Manager

	session    *application.SessionStore
	references application.ReferenceStores
	toasts     *application.ToastBus

	// sessions never opens the realtime connection; live does.
	sessions  *application.SessionService
	live      *application.SessionService
	reference *application.ReferenceService
	catalog   *application.CatalogService

	render   func(catalog.View) (string, error)
	runChat  func(context.Context, chat.Conversation, chat.Toasts, chat.Options) error
	password func(prompt string, in io.Reader, out io.Writer) (string, error)
	now      func() time.Time
}

func wireApp() (*app, error) {
	v := viper.New()
	cfg, err := config.Load(v, config.LoadOptions{EnvFile: os.Getenv("IBUY_ENV_FILE")})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	cookies, err := tomlrepo.NewCookieJar(v, logger.Named("cookies"))
	if err != nil {
		return nil, fmt.Errorf("wire cookie jar: %w", err)
	}

	api, err := httpapi.NewClient(cfg.APIURL, cookies, logger.Named("http"))
	if err != nil {
		return nil, fmt.Errorf("wire api client: %w", err)
	}
	api.RequestTimeout = cfg.RequestTimeout

	manager := realtime.NewManager(cfg.WSURL, cookies, logger.Named("realtime"))

	session := application.NewSessionStore()
	references := application.NewReferenceStores()

	return &app{
		cfg:        cfg,
		logger:     logger,
		closeLog:   closeLog,
		cookies:    cookies,
		api:        api,
		realtime:   manager,
		session:    session,
		references: references,
		toasts:     application.NewToastBus(ports.SystemClock{}),
		sessions: application.NewSessionService(api, session, application.SessionOptions{
			References: references,
			Cookies:    cookies,
			Logger:     logger,
		}),
		live: application.NewSessionService(api, session, application.SessionOptions{
			References: references,
			Realtime:   manager,
			Cookies:    cookies,
			Logger:     logger,
		}),
		reference: application.NewReferenceService(api, references, session),
		catalog:   application.NewCatalogService(api, api, references.Categories, session),
		render:    catalog.Render,
		runChat:   chat.Run,
		password:  readPassword,
		now:       time.Now,
	}, nil
}

// requireUser resolves the signed-in user from the persisted cookies. When
// live is set the realtime connection is opened as well.
func (a *app) requireUser(ctx context.Context, live bool) (domain.User, error) {
	svc := a.sessions
	if live {
		svc = a.live
	}

	user, err := svc.RequireUser(ctx)
	if err != nil {
		return domain.User{}, sessionError(err)
	}
	return user, nil
}

func (a *app) labels(ctx context.Context) catalog.Labels {
	labels := catalog.Labels{}
	if table, err := a.reference.EnsureCategories(ctx); err == nil {
		labels.Categories = table
	} else {
		a.logger.Debug("categories unavailable for rendering", zap.Error(err))
	}
	if table, err := a.reference.EnsureStatuses(ctx); err == nil {
		labels.Statuses = table
	} else {
		a.logger.Debug("statuses unavailable for rendering", zap.Error(err))
	}
	return labels
}

func (a *app) close() error {
	var errs []error
	if a.realtime.State() != realtime.StateDisconnected {
		errs = append(errs, a.realtime.Disconnect())
	}
	_ = a.logger.Sync()
	errs = append(errs, a.closeLog())
	return errors.Join(errs...)
}

func sessionError(err error) error {
	if errors.Is(err, domain.ErrNotAuthenticated) || domain.IsUnauthorized(err) {
		return fmt.Errorf("%w, run `ibuy login`: %w", errSessionExpired, err)
	}
	return err
}
