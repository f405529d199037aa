package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type UpdateBannerRequest struct {
	ImageRef      string  `json:"image_ref"`
	MIMEType      string  `json:"mime_type"`
	NaturalWidth  int     `json:"natural_width"`
	NaturalHeight int     `json:"natural_height"`
	GeometryMode  string  `json:"geometry_mode,omitempty"`
	Scale         float64 `json:"scale"`
	TranslateX    float64 `json:"translate_x"`
	TranslateY    float64 `json:"translate_y"`
	CropX         float64 `json:"crop_x,omitempty"`
	CropY         float64 `json:"crop_y,omitempty"`
	CropWidth     float64 `json:"crop_width,omitempty"`
	CropHeight    float64 `json:"crop_height,omitempty"`
	Rotation      float64 `json:"rotation,omitempty"`
}

type BannerData struct {
	ID            string  `json:"id"`
	ImageRef      string  `json:"image_ref"`
	MIMEType      string  `json:"mime_type"`
	NaturalWidth  int     `json:"natural_width"`
	NaturalHeight int     `json:"natural_height"`
	GeometryMode  string  `json:"geometry_mode"`
	Scale         float64 `json:"scale"`
	TranslateX    float64 `json:"translate_x"`
	TranslateY    float64 `json:"translate_y"`
	CropX         float64 `json:"crop_x,omitempty"`
	CropY         float64 `json:"crop_y,omitempty"`
	CropWidth     float64 `json:"crop_width,omitempty"`
	CropHeight    float64 `json:"crop_height,omitempty"`
	Rotation      float64 `json:"rotation,omitempty"`
	Transform     string  `json:"transform"`
	Version       int64   `json:"version"`
	Published     bool    `json:"published"`
	UpdatedAt     string  `json:"updated_at"`
}

type BannerResponse struct {
	Status string     `json:"status"`
	Data   BannerData `json:"data"`
}

type ListBannersResponse struct {
	Status string       `json:"status"`
	Data   []BannerData `json:"data"`
}
