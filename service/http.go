package service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/fingerbot/constants"
	"github.com/jsphweid/fingerbot/model"
)

// largest body accepted on a characteristic route
const maxValueSize = 1 << 20

// NewRouter mirrors the characteristics over HTTP, one route per
// characteristic, with the raw request body standing in for the written
// value. hub may be nil.
func NewRouter(ft *FileTransfer, pa *PlayAudio, hub *Hub) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	router.HandleFunc("/chrc/file", func(w http.ResponseWriter, r *http.Request) {
		clientID := r.Header.Get("X-Client-Id")
		if clientID == "" {
			clientID = constants.DefaultClientID
		}
		handleWrite(w, r, func(v []byte) error { return ft.Write(clientID, v) })
	}).Methods("POST")
	router.HandleFunc("/chrc/file", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(ft.Read())
	}).Methods("GET")

	router.HandleFunc("/chrc/list", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write(pa.ReadList())
	}).Methods("GET")

	router.HandleFunc("/chrc/play", func(w http.ResponseWriter, r *http.Request) {
		handleWrite(w, r, pa.WritePlay)
	}).Methods("POST")
	router.HandleFunc("/chrc/pause", func(w http.ResponseWriter, r *http.Request) {
		handleWrite(w, r, pa.WritePause)
	}).Methods("POST")
	router.HandleFunc("/chrc/resume", func(w http.ResponseWriter, r *http.Request) {
		handleWrite(w, r, pa.WriteResume)
	}).Methods("POST")
	router.HandleFunc("/chrc/delete", func(w http.ResponseWriter, r *http.Request) {
		handleWrite(w, r, pa.WriteDelete)
	}).Methods("POST")

	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, pa.Status())
	}).Methods("GET")

	if hub != nil {
		router.Handle("/events", hub).Methods("GET")
	}
	return router
}

func handleWrite(w http.ResponseWriter, r *http.Request, write func([]byte) error) {
	value, err := io.ReadAll(io.LimitReader(r.Body, maxValueSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "could not read request body: " + err.Error()})
		return
	}
	if len(value) > maxValueSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, model.ErrorResponse{
			Error: fmt.Sprintf("value larger than %d bytes", maxValueSize),
		})
		return
	}
	if err := write(value); err != nil {
		writeJSON(w, StatusCode(err), model.ErrorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnw("writing response", "err", err)
	}
}
