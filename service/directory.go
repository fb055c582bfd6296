package service

import (
	"github.com/ankitupadhyayx/medicollab-backend/config"
	"github.com/ankitupadhyayx/medicollab-backend/model"
)

// Directory resolves party identifiers at record creation time. The core
// trusts it completely; it is the only view this service has of the
// identity collaborator.
type Directory interface {
	// ResolvePatient returns model.ErrUnknownPatient when the id does not
	// name a patient.
	ResolvePatient(id string) error
	// ResolveHospital returns model.ErrUnknownHospital when the id does
	// not name a hospital.
	ResolveHospital(id string) error
}

// ConfigDirectory is a Directory backed by the users section of the
// config file.
type ConfigDirectory struct {
	cfg *config.Config
}

func NewConfigDirectory(cfg *config.Config) *ConfigDirectory {
	return &ConfigDirectory{cfg: cfg}
}

func (d *ConfigDirectory) ResolvePatient(id string) error {
	user := d.cfg.FindUserByID(id)
	if user == nil || model.Role(user.Role) != model.RolePatient {
		return model.ErrUnknownPatient
	}
	return nil
}

func (d *ConfigDirectory) ResolveHospital(id string) error {
	user := d.cfg.FindUserByID(id)
	if user == nil || model.Role(user.Role) != model.RoleHospital {
		return model.ErrUnknownHospital
	}
	return nil
}
