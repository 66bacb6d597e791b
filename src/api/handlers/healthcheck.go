package handlers

import (
	"fmt"
	"net/http"
)

func Healthcheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, fmt.Sprintf("Method not available: %s", r.Method), http.StatusMethodNotAllowed)
		return
	}
	fmt.Fprintf(w, "Im alive!")
}
