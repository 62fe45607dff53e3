package dto

type CreatePlantRequest struct {
	Name         string `json:"name"`
	Strain       string `json:"strain,omitempty"`
	IsPublic     bool   `json:"is_public"`
	InitialStage string `json:"initial_stage,omitempty"`
}

type UpdatePlantRequest struct {
	Name     *string `json:"name,omitempty"`
	Strain   *string `json:"strain,omitempty"`
	IsPublic *bool   `json:"is_public,omitempty"`
}

type ArchivePlantRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes,omitempty"`
}

type ArchivePlantResponse struct {
	ID                 uint     `json:"id"`
	ArchiveReason      string   `json:"archive_reason"`
	EarnedAchievements []string `json:"earned_achievements,omitempty"`
}

type StageChangeRequest struct {
	Stage string `json:"stage"`
	Notes string `json:"notes,omitempty"`
}

type PermissionRequest struct {
	UserID      uint `json:"user_id"`
	CanEdit     bool `json:"can_edit"`
	CanWater    bool `json:"can_water"`
	CanAddNotes bool `json:"can_add_notes"`
}
