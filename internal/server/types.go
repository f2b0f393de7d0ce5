package server

import "bookshare/pkg/domain"

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Year     string `json:"year"`
	Branch   string `json:"branch"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type sessionResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type createAdRequest struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	PubYear     int     `json:"pubYear"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type requestTransactionRequest struct {
	AdID string `json:"adId"`
	Type string `json:"type"`
}

type contentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type reportRequest struct {
	AdID   string `json:"adId"`
	Reason string `json:"reason"`
}

type downloadResponse struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}
