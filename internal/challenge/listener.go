package challenge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// ReturnListener completes challenges for headless clients: it serves the
// provider's return_url on a local port, tells the user to open the redirect
// URL in a browser, and unblocks when the provider redirects back.
type ReturnListener struct {
	addr string
	done chan string // buffered; carries redirect_status
	srv  *http.Server
}

func NewReturnListener(addr string) (*ReturnListener, error) {
	if addr == "" {
		return nil, fmt.Errorf("challenge: listen address is required")
	}

	l := &ReturnListener{
		addr: addr,
		done: make(chan string, 1),
	}

	r := chi.NewRouter()
	r.Get("/return", l.handleReturn)

	l.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return l, nil
}

// ReturnURL is what gets passed to the provider as return_url. Valid once
// Start has bound the port.
func (l *ReturnListener) ReturnURL() string {
	return "http://" + l.addr + "/return"
}

// Start binds the local port. Fails fast if the port is taken.
func (l *ReturnListener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("challenge: listen on %s: %w", l.addr, err)
	}
	l.addr = ln.Addr().String()
	go func() {
		if errServe := l.srv.Serve(ln); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			log.Printf("challenge listener stopped: %v", errServe)
		}
	}()
	return nil
}

func (l *ReturnListener) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return l.srv.Shutdown(ctx)
}

func (l *ReturnListener) handleReturn(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("redirect_status")
	select {
	case l.done <- status:
	default: // a second redirect for the same attempt is ignored
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Authentication finished. You can return to the app.")
}

// Complete implements Completer. The outcome itself is read back from the
// provider, so the redirect status is only logged here.
func (l *ReturnListener) Complete(ctx context.Context, redirectURL string) error {
	log.Printf("complete the payment authentication in your browser: %s", redirectURL)
	select {
	case status := <-l.done:
		log.Printf("challenge redirect received (status=%s)", status)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
