package service

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/dump"
)

// Stats ...
type Stats struct {
	LastIndex int
	LastHash  string
}

// Service exposes the snapshots of a dump.Store over HTTP.
type Service struct {
	sync.Mutex

	bindAddress string
	store       dump.Store
	mux         *http.ServeMux
	logger      *logrus.Entry
}

// NewService ...
func NewService(bindAddress string, store dump.Store, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		store:       store,
		mux:         http.NewServeMux(),
		logger:      logger,
	}

	service.registerHandlers()

	return &service
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering snapshot API handlers")
	s.mux.HandleFunc("/stats", s.makeHandler(s.GetStats))
	s.mux.HandleFunc("/snapshot/", s.makeHandler(s.GetSnapshot))
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Handler returns the http.Handler serving the API.
func (s *Service) Handler() http.Handler {
	return s.mux
}

// Serve calls ListenAndServe. This is a blocking call.
func (s *Service) Serve() error {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving snapshot API")
	return http.ListenAndServe(s.bindAddress, s.mux)
}

// GetStats ...
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := Stats{LastIndex: s.store.LastIndex()}

	_, snapshot, err := dump.LastSnapshot(s.store)
	switch {
	case err == nil:
		hash, err := snapshot.Hash()
		if err != nil {
			s.fail(w, err, http.StatusInternalServerError)
			return
		}
		stats.LastHash = common.EncodeToString(hash)
	case !common.IsStore(err, common.Empty):
		s.fail(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, &stats)
}

// GetSnapshot serves /snapshot/{index}, or the most recent one for
// /snapshot/last.
func (s *Service) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	param := r.URL.Path[len("/snapshot/"):]

	var index int
	var err error
	if param == "last" {
		index = s.store.LastIndex()
	} else if index, err = strconv.Atoi(param); err != nil {
		s.logger.WithError(err).Errorf("Parsing snapshot index %s", param)
		s.fail(w, err, http.StatusBadRequest)
		return
	}

	snapshot, err := s.store.GetSnapshot(index)
	if err != nil {
		s.logger.WithError(err).Errorf("Retrieving snapshot %d", index)
		status := http.StatusInternalServerError
		if common.IsStore(err, common.KeyNotFound) || common.IsStore(err, common.TooLate) {
			status = http.StatusNotFound
		}
		s.fail(w, err, status)
		return
	}

	data, err := snapshot.Marshal()
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Service) fail(w http.ResponseWriter, err error, status int) {
	http.Error(w, err.Error(), status)
}
