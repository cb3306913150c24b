package myhttp

import (
	"net/http"
	"path"
	"strings"

	"driver-booking/internal/booking-service/adapters/driven/storage"
	"driver-booking/internal/booking-service/adapters/driver/myhttp/handle"
	"driver-booking/internal/booking-service/adapters/driver/myhttp/middleware"
	"driver-booking/internal/booking-service/adapters/driver/myhttp/ws"
	"driver-booking/internal/mylogger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth         *handle.AuthHandler
	Profile      *handle.ProfileHandler
	Catalog      *handle.CatalogHandler
	Checkout     *handle.CheckoutHandler
	Booking      *handle.BookingHandler
	Registration *handle.RegistrationHandler
	Sessions     *ws.Dispatcher
	AuthMW       *middleware.AuthMiddleware
	Health       http.HandlerFunc
	// StorageRoot is served read-only under storage.PublicPrefix when set.
	StorageRoot string
}

func NewRouter(h Handlers, mylog mylogger.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(mylog))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if h.Health != nil {
		r.Get("/health", h.Health)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register())
		r.Post("/login", h.Auth.Login())
		r.Get("/oauth/{provider}", h.Auth.OAuthURL())
		r.Get("/callback", h.Auth.Callback())
		r.Post("/logout", h.Auth.Logout())
		r.Get("/session", h.Auth.Session())
		r.Post("/forgot-password", h.Auth.ForgotPassword())
		r.Post("/reset-password", h.Auth.ResetPassword())
	})

	r.Get("/drivers", h.Catalog.ListDrivers())
	r.Get("/drivers/{id}", h.Catalog.GetDriver())
	r.Post("/driver-registration/account", h.Registration.CreateAccount())

	if h.Sessions != nil {
		r.Get("/ws/session", h.Sessions.SessionHandler())
	}

	r.Group(func(r chi.Router) {
		r.Use(h.AuthMW.Wrap)

		r.Get("/profile", h.Profile.GetProfile())
		r.Put("/profile", h.Profile.UpdateProfile())
		r.Post("/profile/password", h.Auth.ChangePassword())

		r.Post("/checkout", h.Checkout.Start())
		r.Get("/checkout/{id}", h.Checkout.Get())
		r.Put("/checkout/{id}/duration", h.Checkout.SetDuration())
		r.Put("/checkout/{id}/trip", h.Checkout.SetTrip())
		r.Put("/checkout/{id}/payment", h.Checkout.SetPayment())
		r.Post("/checkout/{id}/next", h.Checkout.Next())
		r.Post("/checkout/{id}/back", h.Checkout.Back())
		r.Post("/checkout/{id}/submit", h.Checkout.Submit())

		r.Get("/bookings", h.Booking.ListBookings())
		r.Get("/bookings/{id}", h.Booking.GetBooking())
		r.Post("/bookings/{id}/cancel", h.Booking.CancelBooking())
		r.Post("/bookings/{id}/review", h.Booking.ReviewBooking())

		r.Get("/driver-registration/prefill", h.Registration.Prefill())
		r.Post("/driver-registration", h.Registration.SubmitDetails())
	})

	if h.StorageRoot != "" {
		r.Handle(storage.PublicPrefix+"*", publicFiles(h.StorageRoot))
	}

	return r
}

// inlineExts are served for display; anything else is a download.
var inlineExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".heic": true, ".pdf": true,
}

// publicFiles serves stored objects without directory listings. Objects are
// never sniffed and never run script on the API origin.
func publicFiles(root string) http.Handler {
	fs := http.StripPrefix(strings.TrimSuffix(storage.PublicPrefix, "/"), http.FileServer(http.Dir(root)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; sandbox")
		if !inlineExts[strings.ToLower(path.Ext(r.URL.Path))] {
			w.Header().Set("Content-Disposition", "attachment")
		}
		fs.ServeHTTP(w, r)
	})
}
