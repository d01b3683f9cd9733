package service

import "feeportal/internal/models"

func loadActor(users UserStore, id uint) (*models.User, error) {
	u, err := users.GetByID(id)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return u, nil
}

// actorSchool returns the caller's school id, failing when none is linked.
func actorSchool(users UserStore, id uint) (*models.User, uint, error) {
	u, err := loadActor(users, id)
	if err != nil {
		return nil, 0, err
	}
	if u.SchoolID == nil || *u.SchoolID == 0 {
		return u, 0, invalid("Please create your school profile first")
	}
	return u, *u.SchoolID, nil
}
