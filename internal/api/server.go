package api

import (
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/dev"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/nft-marketplace/internal/metrics"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/gorilla/mux"
	"net/http"
)

const CallerHeader = "X-Caller"

type Server struct {
	market  marketplace.Marketplace
	search  repository.ListingSearchRepository
	metrics *metrics.Metrics
	seeder  *dev.Seeder
}

// NewServer builds the HTTP surface of the marketplace. seeder is only set in dev environments
// and enables the /dev routes.
func NewServer(market marketplace.Marketplace, search repository.ListingSearchRepository, metrics *metrics.Metrics, seeder *dev.Seeder) Server {
	return Server{market, search, metrics, seeder}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestMiddleware)

	r.HandleFunc("/", s.handleHomepage).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/listings", s.handleGetListings).Methods(http.MethodGet)
	r.HandleFunc("/listings", s.handleCreateListing).Methods(http.MethodPost)
	r.HandleFunc("/listings/active", s.handleFetchActive).Methods(http.MethodGet)
	r.HandleFunc("/listings/purchased", s.handleFetchPurchased).Methods(http.MethodGet)
	r.HandleFunc("/listings/created", s.handleFetchCreated).Methods(http.MethodGet)
	r.HandleFunc("/listings/{listingId:[0-9]+}", s.handleGetListing).Methods(http.MethodGet)
	r.HandleFunc("/listings/{listingId:[0-9]+}", s.handleRetire).Methods(http.MethodDelete)
	r.HandleFunc("/sales", s.handleSell).Methods(http.MethodPost)
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)

	r.HandleFunc("/config/fee", s.handleGetFee).Methods(http.MethodGet)
	r.HandleFunc("/config/fee", s.handleSetFee).Methods(http.MethodPut)
	r.HandleFunc("/config/currency", s.handleGetCurrency).Methods(http.MethodGet)
	r.HandleFunc("/config/currency", s.handleSetCurrency).Methods(http.MethodPut)
	r.HandleFunc("/config/operator", s.handleGetOperator).Methods(http.MethodGet)
	r.HandleFunc("/config/operator", s.handleSetOperator).Methods(http.MethodPut)

	if s.seeder != nil {
		d := r.PathPrefix("/dev").Subrouter()
		d.HandleFunc("/balances", s.handleMintBalance).Methods(http.MethodPost)
		d.HandleFunc("/balances/{currency}/{account}", s.handleGetBalance).Methods(http.MethodGet)
		d.HandleFunc("/allowances", s.handleApproveSpender).Methods(http.MethodPost)
		d.HandleFunc("/assets", s.handleMintAsset).Methods(http.MethodPost)
		d.HandleFunc("/assets/{collection}/{assetId:[0-9]+}", s.handleGetAsset).Methods(http.MethodGet)
		d.HandleFunc("/approvals", s.handleApproveOperator).Methods(http.MethodPost)
	}

	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "NFT Marketplace")
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "marketplace": s.market.Address().String()})
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "NotFound", Message: "Page not found"})
	})
}
