package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jypelle/minerdeck/apimodel"
	"github.com/jypelle/minerdeck/internal/jsonx"
	"github.com/jypelle/minerdeck/internal/srv/config"
	"github.com/jypelle/minerdeck/internal/srv/event"
	"github.com/jypelle/minerdeck/internal/srv/monitor"
	"github.com/jypelle/minerdeck/internal/tool"
	"github.com/sirupsen/logrus"
)

const maxMinerPayload = 4096

// StatusFunc snapshots the daemon state for GET /api/status
type StatusFunc func() apimodel.Status

// FrameFunc returns the current panel content as PNG
type FrameFunc func() ([]byte, error)

var ErrNoFrame = errors.New("display driver has no frame buffer")

type Api struct {
	eventChannel chan event.ApiEvent

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server

	configDir string
	param     config.ApiParam
	status    StatusFunc
	frame     FrameFunc
}

func NewApi(configDir string, param config.ApiParam, status StatusFunc, frame FrameFunc) *Api {
	api := &Api{
		configDir:    configDir,
		param:        param,
		status:       status,
		frame:        frame,
		eventChannel: make(chan event.ApiEvent),
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	// Auth middleware
	api.apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						GlobalErrorAction(w, fmt.Sprintf("%v", rec), http.StatusInternalServerError)
					}
				}()

				if r.Header.Get("x-api-key") != api.param.ApiKey {
					ErrorStatusAction(w, r, http.StatusForbidden)
					return
				}

				logrus.Debugf("PATH: %s %s %s", r.Method, r.Host, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	api.apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")
	api.apiRouter.HandleFunc("/status", api.statusAction).Methods("GET")
	api.apiRouter.HandleFunc("/frame", api.frameAction).Methods("GET")

	api.apiRouter.HandleFunc("/screen/next", api.commandAction(event.ApiEventNextScreenData{})).Methods("POST")
	api.apiRouter.HandleFunc("/screen/previous", api.commandAction(event.ApiEventPreviousScreenData{})).Methods("POST")
	api.apiRouter.HandleFunc("/screen/toggle", api.commandAction(event.ApiEventToggleScreenData{})).Methods("POST")
	api.apiRouter.HandleFunc("/screen/rotate", api.commandAction(event.ApiEventRotateScreenData{})).Methods("POST")
	api.apiRouter.HandleFunc("/wake", api.commandAction(event.ApiEventWakeData{})).Methods("POST")

	api.apiRouter.HandleFunc("/screensaver/{minutes}",
		func(w http.ResponseWriter, r *http.Request) {
			minutes, err := strconv.ParseUint(mux.Vars(r)["minutes"], 10, 32)
			if err != nil {
				ErrorStatusAction(w, r, http.StatusBadRequest)
				return
			}
			api.sendEvent(w, r, event.ApiEventScreensaverData{Minutes: uint32(minutes)})
		}).Methods("PUT")

	api.apiRouter.HandleFunc("/miner",
		func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxMinerPayload))
			if err != nil {
				ErrorStatusAction(w, r, http.StatusBadRequest)
				return
			}
			var counters apimodel.MinerCounters
			if err := jsonx.Unmarshal(body, &counters); err != nil {
				GlobalErrorAction(w, apimodel.WrongParametersErrorMessage.ErrMessage, http.StatusBadRequest)
				return
			}
			api.sendEvent(w, r, event.ApiEventMinerData{Counters: monitor.MiningCounters{
				Templates:    counters.Templates,
				Hashes:       counters.Hashes,
				MHashes:      counters.MHashes,
				TotalKHashes: counters.TotalKHashes,
				Shares:       counters.Shares,
				Valids:       counters.Valids,
				BestDiff:     counters.BestDiff,
				UpTime:       counters.UpTime,
			}})
		}).Methods("POST")

	// Tell the browser that it's OK for JS to communicate with the server
	headersOk := handlers.AllowedHeaders([]string{"Authorization", "x-api-key", "Content-Type"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"})

	api.server = &http.Server{
		Addr:         ":" + strconv.FormatInt(param.Port, 10),
		Handler:      api.Handler(handlers.CORS(originsOk, headersOk, methodsOk)),
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 240,
	}

	return api
}

// Handler returns the routed api wrapped by the given middlewares and compression
func (d *Api) Handler(middlewares ...func(http.Handler) http.Handler) http.Handler {
	var h http.Handler = d.router
	for _, m := range middlewares {
		h = m(h)
	}
	return handlers.CompressHandler(h)
}

func (d *Api) sendEvent(w http.ResponseWriter, r *http.Request, data interface{}) {
	result := make(chan error)
	select {
	case d.eventChannel <- event.ApiEvent{Result: result, Data: data}:
	case <-r.Context().Done():
		return
	}
	if err := <-result; err != nil {
		GlobalErrorAction(w, err.Error(), http.StatusForbidden)
		return
	}
	ErrorStatusAction(w, r, http.StatusOK)
}

func (d *Api) commandAction(data interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.sendEvent(w, r, data)
	}
}

func (d *Api) statusAction(w http.ResponseWriter, r *http.Request) {
	raw, err := jsonx.Marshal(d.status())
	if err != nil {
		GlobalErrorAction(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (d *Api) frameAction(w http.ResponseWriter, r *http.Request) {
	if d.frame == nil {
		GlobalErrorAction(w, ErrNoFrame.Error(), http.StatusServiceUnavailable)
		return
	}
	raw, err := d.frame()
	if err != nil {
		GlobalErrorAction(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (d *Api) Start() {
	logrus.Infof("Start api device on port %d", d.param.Port)

	if !d.param.Tls {
		go func() {
			if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Error(err)
			}
		}()
		return
	}

	existServerCert, err := tool.IsFileExists(d.selfSignedCertFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.selfSignedCertFilename(), err)
	}

	existServerKey, err := tool.IsFileExists(d.selfSignedKeyFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.selfSignedKeyFilename(), err)
	}

	if !existServerCert || !existServerKey {
		logrus.Info("Missing cert and key files, trying to generate them...")
		err = tool.GenerateTlsCertificate(
			"minerdeck",
			"minerdeck status api",
			d.selfSignedKeyFilename(),
			d.selfSignedCertFilename(),
			[]string{"localhost"},
			10*365*24*time.Hour)
		if err != nil {
			logrus.Fatalf("Unable to generate cert and key files : %v\n", err)
		}
		logrus.Info("Self-signed cert and key files generated")
	}

	// Launch https server
	go func() {
		err := d.server.ListenAndServeTLS(d.selfSignedCertFilename(), d.selfSignedKeyFilename())
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Error(err)
		}
	}()
}

func (d *Api) StopSendingEvent() {
	logrus.Infof("Stop api device")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d.server.Shutdown(ctx)
}

func (d *Api) EventChannel() chan event.ApiEvent {
	return d.eventChannel
}

func (d *Api) selfSignedKeyFilename() string {
	return filepath.Join(d.configDir, "key.pem")
}

func (d *Api) selfSignedCertFilename() string {
	return filepath.Join(d.configDir, "cert.pem")
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	ErrorMessageAction(w, "", status)
}

func GlobalErrorAction(w http.ResponseWriter, message string, status int) {
	ErrorMessageAction(w, message, status)
}

func ErrorMessageAction(w http.ResponseWriter, title string, status int) {
	raw, err := jsonx.Marshal(apimodel.NewErrorMessage(status, title))
	if err != nil {
		logrus.Errorf("Unable to encode error message: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(raw)
}
