package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

// Public reads: pool metadata, rosters, rules, questions and standings are
// visible without a token so shared standings links work.
func registerPublicPoolRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/pools/{poolID}", handler.GetPool)
	mux.HandleFunc("GET /v1/pools/{poolID}/contestants", handler.ListContestants)
	mux.HandleFunc("GET /v1/pools/{poolID}/contestant-groups", handler.ListContestantGroups)
	mux.HandleFunc("GET /v1/pools/{poolID}/rules", handler.ListScoringRules)
	mux.HandleFunc("GET /v1/pools/{poolID}/bonus-questions", handler.ListBonusQuestions)
	mux.HandleFunc("GET /v1/pools/{poolID}/standings", handler.ListStandings)
	mux.HandleFunc("GET /v1/pools/{poolID}/weeks", handler.ListWeeklyResults)
	mux.HandleFunc("GET /v1/pools/{poolID}/weeks/{week}", handler.GetWeeklyResult)
	mux.HandleFunc("GET /v1/entries/{entryID}", handler.GetEntry)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedPoolRoutes(mux, handler, verifier)
	registerAuthorizedEntryRoutes(mux, handler, verifier)
	registerAuthorizedAdminRoutes(mux, handler, verifier)
}

func registerAuthorizedPoolRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/pools", RequireAuth(verifier, http.HandlerFunc(handler.CreatePool)))
	mux.Handle("GET /v1/pools/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPools)))
	mux.Handle("POST /v1/pools/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinPoolByInvite)))
	mux.Handle("PATCH /v1/pools/{poolID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdatePoolSettings)))
}

func registerAuthorizedEntryRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/pools/{poolID}/entries", RequireAuth(verifier, http.HandlerFunc(handler.SubmitEntry)))
	mux.Handle("GET /v1/entries/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyEntries)))
	mux.Handle("PUT /v1/entries/{entryID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateEntry)))
	mux.Handle("DELETE /v1/entries/{entryID}", RequireAuth(verifier, http.HandlerFunc(handler.WithdrawEntry)))
}

func registerAuthorizedAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/pools/{poolID}/contestants", RequireAuth(verifier, http.HandlerFunc(handler.CreateContestant)))
	mux.Handle("PATCH /v1/pools/{poolID}/contestants/{contestantID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateContestant)))
	mux.Handle("DELETE /v1/pools/{poolID}/contestants/{contestantID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteContestant)))
	mux.Handle("POST /v1/pools/{poolID}/contestants/bulk", RequireAuth(verifier, http.HandlerFunc(handler.BulkSeedContestants)))
	mux.Handle("POST /v1/pools/{poolID}/contestants/generate", RequireAuth(verifier, http.HandlerFunc(handler.GenerateRoster)))
	mux.Handle("POST /v1/pools/{poolID}/weeks/verify", RequireAuth(verifier, http.HandlerFunc(handler.VerifyWeekData)))
	mux.Handle("POST /v1/pools/{poolID}/rules", RequireAuth(verifier, http.HandlerFunc(handler.CreateScoringRule)))
	mux.Handle("PATCH /v1/pools/{poolID}/rules/{ruleID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateScoringRule)))
	mux.Handle("POST /v1/pools/{poolID}/bonus-questions", RequireAuth(verifier, http.HandlerFunc(handler.CreateBonusQuestion)))
	mux.Handle("PATCH /v1/pools/{poolID}/bonus-questions/{questionID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateBonusQuestion)))
	mux.Handle("POST /v1/pools/{poolID}/bonus-questions/{questionID}/reveal", RequireAuth(verifier, http.HandlerFunc(handler.RevealBonusAnswer)))
	mux.Handle("POST /v1/pools/{poolID}/weeks", RequireAuth(verifier, http.HandlerFunc(handler.SubmitWeek)))
	mux.Handle("POST /v1/pools/{poolID}/recompute", RequireAuth(verifier, http.HandlerFunc(handler.RecomputePoints)))
	mux.Handle("POST /v1/pools/{poolID}/entries/{entryID}/payment", RequireAuth(verifier, http.HandlerFunc(handler.ConfirmEntryPayment)))
}
