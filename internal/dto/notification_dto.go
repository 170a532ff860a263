package dto

type NotificationResponse struct {
	ID        string  `json:"id"`
	Tipo      string  `json:"tipo"`
	Titulo    string  `json:"titulo"`
	Cuerpo    string  `json:"cuerpo"`
	EntityRef *string `json:"entity_ref"`
	Leida     bool    `json:"leida"`
	CreatedAt string  `json:"created_at"`
}

type AuditLogResponse struct {
	ID        string  `json:"id"`
	ActorID   *string `json:"actor_id"`
	Action    string  `json:"action"`
	Entity    string  `json:"entity"`
	EntityID  string  `json:"entity_id"`
	Before    string  `json:"before,omitempty"`
	After     string  `json:"after,omitempty"`
	CreatedAt string  `json:"created_at"`
}
