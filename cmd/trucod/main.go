package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"truco-lite/internal/gateway"
	"truco-lite/internal/httpapi"
	"truco-lite/internal/ledger"
	"truco-lite/internal/lobby"
)

func main() {
	ledgerService, ledgerMode, err := ledger.NewServiceFromEnv(os.Getenv("LEDGER_MODE"))
	if err != nil {
		log.Fatalf("[Server] Failed to init ledger service: %v", err)
	}
	defer ledgerService.Close()

	lby := lobby.New(ledgerService)
	gw := gateway.New(lby)
	api := httpapi.New(lby, ledgerService)

	router := mux.NewRouter()
	router.HandleFunc("/ws", gw.HandleWebSocket)
	api.Register(router)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("[Server] Ledger mode: %s", ledgerMode)
	log.Printf("[Server] Listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}
