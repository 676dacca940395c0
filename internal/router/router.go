package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	_ "noahs-ark/docs"
	fmem "noahs-ark/internal/adapters/files/memory"
	mem "noahs-ark/internal/adapters/storage/memory"
	pg "noahs-ark/internal/adapters/storage/postgres"
	"noahs-ark/internal/domain/abusereports"
	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/domain/animals"
	"noahs-ark/internal/domain/appointments"
	"noahs-ark/internal/domain/chat"
	"noahs-ark/internal/domain/dashboard"
	"noahs-ark/internal/domain/notifications"
	"noahs-ark/internal/domain/uploads"
	"noahs-ark/internal/domain/users"
	"noahs-ark/internal/domain/workflow"
	"noahs-ark/internal/middleware"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/auth"
	"noahs-ark/internal/ports/files"
	portrt "noahs-ark/internal/ports/realtime"
	"noahs-ark/internal/ports/store"
	"noahs-ark/internal/ports/tracking"
	"noahs-ark/internal/realtime"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger

	// Hub local de websockets. Si es nil se crea uno.
	Hub *realtime.Hub
	// Publisher que usan notificaciones y chat. Si es nil: AsyncPublisher sobre el Hub.
	Publisher      portrt.Publisher
	PublishTimeout time.Duration

	// Tracker puede ser nil: el device id se guarda sin registrarlo.
	Tracker tracking.DeviceTracker
	// Files nil => store en memoria.
	Files files.Store

	OnlineWindow time.Duration
}

type repos struct {
	users         users.Repository
	animals       animals.Repository
	requests      adoptions.Repository
	appointments  appointments.Repository
	reports       abusereports.Repository
	notifications notifications.Repository
	messages      chat.Repository
	tx            store.TxRunner
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	hub := opts.Hub
	if hub == nil {
		hub = realtime.NewHub(0, log)
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = realtime.NewAsyncPublisher(hub, opts.PublishTimeout, log)
	}
	fileStore := opts.Files
	if fileStore == nil {
		fileStore = fmem.NewStore()
	}

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, using in-memory store", map[string]any{"error": err})
			}
		}
	}
	rp := newRepos(db)

	// Services por módulo
	usersSvc := users.NewService(rp.users)
	animalsSvc := animals.NewService(rp.animals, opts.Tracker, log)
	dispatcher := notifications.NewDispatcher(rp.notifications, publisher, log)
	notificationsSvc := notifications.NewService(rp.notifications)
	adoptionsSvc := adoptions.NewService(rp.requests, rp.animals, rp.users, rp.tx)
	reportsSvc := abusereports.NewService(rp.reports)
	appointmentsSvc := appointments.NewService(appointments.Deps{
		Repo:     rp.appointments,
		Requests: rp.requests,
		Animals:  rp.animals,
		Profiles: rp.users,
		Notifier: dispatcher,
		Tx:       rp.tx,
		Log:      log,
	})
	engine := workflow.NewEngine(workflow.Deps{
		Requests:     rp.requests,
		Appointments: rp.appointments,
		Reports:      rp.reports,
		Animals:      rp.animals,
		Notifier:     dispatcher,
		Tx:           rp.tx,
		Log:          log,
	})
	chatSvc := chat.NewService(rp.messages, rp.users, chat.Options{
		Publisher:    publisher,
		Log:          log,
		OnlineWindow: opts.OnlineWindow,
	})
	dashboardSvc := dashboard.NewService(rp.animals, rp.requests, rp.reports)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas autenticadas
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthContext(opts.AuthVerifier))
		r.Use(middleware.LastActivity(usersSvc, log))

		users.RegisterRoutes(r, usersSvc)
		animals.RegisterRoutes(r, animalsSvc)
		adoptions.RegisterRoutes(r, adoptionsSvc)
		abusereports.RegisterRoutes(r, reportsSvc)
		appointments.RegisterRoutes(r, appointmentsSvc)
		workflow.RegisterRoutes(r, engine)
		notifications.RegisterRoutes(r, notificationsSvc)
		chat.RegisterRoutes(r, chatSvc)
		dashboard.RegisterRoutes(r, dashboardSvc)
		uploads.RegisterRoutes(r, fileStore)
		realtime.RegisterRoutes(r, hub, log)
	})

	return r
}

func newRepos(db *sql.DB) repos {
	if db != nil {
		return repos{
			users:         pg.NewUsersRepo(db),
			animals:       pg.NewAnimalsRepo(db),
			requests:      pg.NewAdoptionRequestsRepo(db),
			appointments:  pg.NewAppointmentsRepo(db),
			reports:       pg.NewAbuseReportsRepo(db),
			notifications: pg.NewNotificationsRepo(db),
			messages:      pg.NewMessagesRepo(db),
			tx:            pg.NewTxRunner(db),
		}
	}

	m := mem.NewDB()
	return repos{
		users:         mem.NewUserRepo(m),
		animals:       mem.NewAnimalRepo(m),
		requests:      mem.NewAdoptionRepo(m),
		appointments:  mem.NewAppointmentRepo(m),
		reports:       mem.NewAbuseReportRepo(m),
		notifications: mem.NewNotificationRepo(m),
		messages:      mem.NewMessageRepo(m),
		tx:            mem.NewTxRunner(m),
	}
}
