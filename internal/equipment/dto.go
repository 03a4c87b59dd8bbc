package equipment

type UpdateStatusDTO struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

type ListResponse struct {
	Equipment []*Equipment `json:"equipment"`
}

type HistoryResponse struct {
	EquipmentID int64           `json:"equipmentId"`
	Changes     []*StatusChange `json:"changes"`
}
