package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type UploadResponse struct {
	Status string `json:"status"`
	Data   struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		MIME   string `json:"mime"`
		Hash   string `json:"hash"`
		Size   int64  `json:"size"`
	} `json:"data"`
}
