package server

import (
	"net/http"

	"bookshare/internal/app"
	"bookshare/pkg/domain"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, token, err := s.app.Register(app.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.UserRole(req.Role),
		Year:     req.Year,
		Branch:   req.Branch,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{User: user, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, token, err := s.app.Login(req.Email, req.Password, domain.UserRole(req.Role))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	if err := s.app.Logout(token); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListAds(w http.ResponseWriter, r *http.Request, _ domain.User) {
	listings, err := s.app.ListAds()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleCreateAd(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req createAdRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	listing, err := s.app.CreateAd(r.Context(), user, app.CreateAdInput{
		Title:       req.Title,
		Author:      req.Author,
		PubYear:     req.PubYear,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (s *Server) handleGetAd(w http.ResponseWriter, r *http.Request, _ domain.User) {
	listing, err := s.app.GetListing(r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleDeleteAd(w http.ResponseWriter, r *http.Request, user domain.User) {
	if err := s.app.DeleteAd(r.Context(), user, r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleRequestTransaction(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req requestTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := s.app.RequestTransaction(r.Context(), user, req.AdID, domain.TransactionType(req.Type))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleAcceptTransaction(w http.ResponseWriter, r *http.Request, user domain.User) {
	tx, err := s.app.AcceptTransaction(r.Context(), user, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleSales(w http.ResponseWriter, r *http.Request, user domain.User) {
	sales, err := s.app.Sales(user)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, user domain.User) {
	h, err := s.app.UserHistory(user)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request, user domain.User) {
	notes, err := s.app.Notifications(user)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request, user domain.User) {
	if err := s.app.MarkNotificationRead(user, r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) handleListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := s.app.ListBlogs()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, blogs)
}

func (s *Server) handlePostBlog(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req contentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	blog, err := s.app.PostBlog(user, req.Title, req.Content)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, blog)
}

func (s *Server) handleGetBlog(w http.ResponseWriter, r *http.Request) {
	blog, err := s.app.GetBlog(r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

func (s *Server) handleEditBlog(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req contentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	blog, err := s.app.EditBlog(user, r.PathValue("id"), req.Title, req.Content)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

func (s *Server) handleDeleteBlog(w http.ResponseWriter, r *http.Request, user domain.User) {
	if err := s.app.DeleteBlog(user, r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	posts, err := s.app.ListInterviews()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handlePostInterview(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req contentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	post, err := s.app.PostInterview(user, req.Title, req.Content)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleEditInterview(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req contentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	post, err := s.app.EditInterview(user, r.PathValue("id"), req.Title, req.Content)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDeleteInterview(w http.ResponseWriter, r *http.Request, user domain.User) {
	if err := s.app.DeleteInterview(user, r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := s.app.ListMaterials()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

// handleUploadMaterial takes a multipart form: file plus subject, semester
// and academicYear fields.
func (s *Server) handleUploadMaterial(w http.ResponseWriter, r *http.Request, user domain.User) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMaterialBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart file field is required")
		return
	}
	defer file.Close()
	m, err := s.app.UploadMaterial(r.Context(), user, app.UploadMaterialInput{
		Subject:      r.FormValue("subject"),
		Semester:     r.FormValue("semester"),
		AcademicYear: r.FormValue("academicYear"),
		Filename:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		Body:         file,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleMaterialDownload(w http.ResponseWriter, r *http.Request, _ domain.User) {
	url, err := s.app.MaterialDownloadURL(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, downloadResponse{URL: url})
}

func (s *Server) handleVerifyMaterial(w http.ResponseWriter, r *http.Request, user domain.User) {
	if err := s.app.VerifyMaterial(user, r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request, user domain.User) {
	reports, err := s.app.ListReports(user)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleReportAd(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req reportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	report, err := s.app.ReportAd(user, req.AdID, req.Reason)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleResolveReport(w http.ResponseWriter, r *http.Request, user domain.User) {
	if err := s.app.ResolveReport(user, r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, user domain.User) {
	users, err := s.app.ListUsers(user)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, user domain.User) {
	if err := s.app.DeleteUser(user, r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
