package model

// StudentIdentity личность студента из внешнего хранилища сессий.
// Ядро её не создаёт и не хранит, только проверяет перед бронированием.
type StudentIdentity struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// IsValid проверяет что личность пригодна для бронирования
func (s *StudentIdentity) IsValid() bool {
	return s.ID != 0
}
