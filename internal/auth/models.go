package auth

// DevAuthResponse is the payload of the dev token endpoint.
type DevAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
}

// DevAuthRequest optionally names the user to issue a token for;
// empty means the shared dev user.
type DevAuthRequest struct {
	UserID string `json:"user_id"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
