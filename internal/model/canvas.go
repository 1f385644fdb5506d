package model

// CanvasMeta 画布全局状态（与前端共享）
type CanvasMeta struct {
	GlobalTitle       string `json:"globalTitle"`
	GlobalDescription string `json:"globalDescription"`
	LastAction        string `json:"lastAction"`
	ItemsCreated      int    `json:"itemsCreated"`
}
