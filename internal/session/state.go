// Package session holds the in-memory session state, the reducer that
// derives every next state, and the single owner that serializes dispatch.
package session

import (
	"errors"
	"fmt"
	"slices"

	"bluecherry-cli/pkg/models"
)

// ErrUnknownAction is returned for an action the reducer does not handle.
var ErrUnknownAction = errors.New("unknown session action")

// State is the session snapshot. The zero value is the initial state.
type State struct {
	ActiveAccount      *models.AccountRecord
	AccountList        []models.AccountEntry
	DeviceList         []models.Device
	SelectedDeviceList models.DeviceGrid
	TargetDevice       string
}

// Initial returns the initial state.
func Initial() State {
	return State{}
}

// LoggedIn reports whether a profile is active.
func (s State) LoggedIn() bool {
	return s.ActiveAccount != nil
}

// Clone returns a deep copy that shares no memory with s.
func (s State) Clone() State {
	out := s
	if s.ActiveAccount != nil {
		acc := *s.ActiveAccount
		out.ActiveAccount = &acc
	}
	out.AccountList = slices.Clone(s.AccountList)
	out.DeviceList = slices.Clone(s.DeviceList)
	return out
}

// Action is the closed set of session transitions.
type Action interface {
	isAction()
}

// Login replaces the whole state with a fresh session for Account.
type Login struct {
	Account      models.AccountRecord
	TargetDevice string
}

// Logout resets to the initial state.
type Logout struct{}

type UpdateAccountList struct {
	Accounts []models.AccountEntry
}

type UpdateDeviceList struct {
	Devices []models.Device
}

type UpdateSelectedDeviceList struct {
	Grid models.DeviceGrid
}

// UpdateAllDeviceList replaces the device list and the grid together.
type UpdateAllDeviceList struct {
	Devices []models.Device
	Grid    models.DeviceGrid
}

func (Login) isAction()                    {}
func (Logout) isAction()                   {}
func (UpdateAccountList) isAction()        {}
func (UpdateDeviceList) isAction()         {}
func (UpdateSelectedDeviceList) isAction() {}
func (UpdateAllDeviceList) isAction()      {}

// Reduce derives the next state. It never modifies s or the action payload;
// unknown actions leave s unchanged and return ErrUnknownAction.
func Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case Login:
		acc := a.Account
		return State{ActiveAccount: &acc, TargetDevice: a.TargetDevice}, nil
	case Logout:
		return Initial(), nil
	case UpdateAccountList:
		next := s.Clone()
		next.AccountList = slices.Clone(a.Accounts)
		return next, nil
	case UpdateDeviceList:
		next := s.Clone()
		next.DeviceList = slices.Clone(a.Devices)
		return next, nil
	case UpdateSelectedDeviceList:
		next := s.Clone()
		next.SelectedDeviceList = a.Grid
		return next, nil
	case UpdateAllDeviceList:
		next := s.Clone()
		next.DeviceList = slices.Clone(a.Devices)
		next.SelectedDeviceList = a.Grid
		return next, nil
	}
	return s, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}
