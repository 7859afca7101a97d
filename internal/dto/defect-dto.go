package dto

// CreateDefectDTO: что клиент присылает для регистрации дефекта.
// Все даты — строки в формате YYYY-MM-DD.
type CreateDefectDTO struct {
	DefectNo    string  `json:"defect_no" validate:"required,min=3"`
	Title       string  `json:"title" validate:"required,min=3"`
	Description *string `json:"description,omitempty"`
	SupplierID  uint64  `json:"supplier_id" validate:"required,gt=0"`
	Severity    string  `json:"severity" validate:"required,oneof=S A B C"`
	PartNo      *string `json:"part_no,omitempty"`
	Quantity    *int    `json:"quantity,omitempty" validate:"omitempty,gt=0"`

	OpenDate   string  `json:"open_date" validate:"required,datetime=2006-01-02"`
	TargetDate *string `json:"target_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateDefectDTO: частичное обновление. Веха, присланная пустой строкой,
// очищается; отсутствующее поле не трогается.
type UpdateDefectDTO struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=3"`
	Description *string `json:"description,omitempty"`
	Severity    *string `json:"severity,omitempty" validate:"omitempty,oneof=S A B C"`
	PartNo      *string `json:"part_no,omitempty"`
	Quantity    *int    `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=ONGOING DELAYED WAITING CLOSED"`

	OpenDate         *string `json:"open_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DispositionDate  *string `json:"disposition_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TechAnalysisDate *string `json:"tech_analysis_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	RootCauseDate    *string `json:"root_cause_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CorrectiveDate   *string `json:"corrective_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ValidationDate   *string `json:"validation_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TargetDate       *string `json:"target_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// DefectDTO: что сервер отправляет клиенту в ответ.
type DefectDTO struct {
	ID           uint64  `json:"id"`
	DefectNo     string  `json:"defect_no"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	SupplierID   uint64  `json:"supplier_id"`
	SupplierName string  `json:"supplier_name,omitempty"`
	Severity     string  `json:"severity"`
	PartNo       *string `json:"part_no,omitempty"`
	Quantity     *int    `json:"quantity,omitempty"`

	OpenDate         string  `json:"open_date"`
	DispositionDate  *string `json:"disposition_date"`
	TechAnalysisDate *string `json:"tech_analysis_date"`
	RootCauseDate    *string `json:"root_cause_date"`
	CorrectiveDate   *string `json:"corrective_date"`
	ValidationDate   *string `json:"validation_date"`
	TargetDate       *string `json:"target_date"`

	Step        string `json:"step"`
	Responsible string `json:"responsible"`
	Status      string `json:"status"`
	AgingTotal  int    `json:"aging_total"`
	AgingByStep int    `json:"aging_by_step"`
	DaysLate    int    `json:"days_late"`
	AgingBucket string `json:"aging_bucket"`
	Year        int    `json:"year"`
	WeekKey     string `json:"week_key"`
	MonthName   string `json:"month_name"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}
