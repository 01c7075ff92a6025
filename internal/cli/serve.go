package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vkuksa/factgraph/internal/config"
	"github.com/vkuksa/factgraph/internal/model"
	"github.com/vkuksa/factgraph/internal/worker"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verification HTTP API",
	Long: `Serve exposes the verification flow over HTTP.

POST /verify with {"claim": "...", "mode": "hybrid"} returns the full
verification result. Claims that cannot be parsed still return 200
with a Not Enough Info verdict; only malformed requests are rejected.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
}

type verifyRequest struct {
	Claim string `json:"claim"`
	Mode  string `json:"mode,omitempty"`
}

type apiError struct {
	Error string `json:"error"`
}

// Server handles verification requests
type Server struct {
	verifier worker.Verifier
}

// NewServer creates an HTTP handler around a verifier
func NewServer(verifier worker.Verifier) *Server {
	return &Server{verifier: verifier}
}

// Handler returns the route mux
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/verify", s.handleVerify)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Claim) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "missing claim"})
		return
	}

	result, err := s.verifier.Verify(r.Context(), req.Claim, model.ParseMode(req.Mode))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           NewServer(p).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(os.Stderr, "factgraph listening on %s\n", serveAddr)
	return srv.ListenAndServe()
}
