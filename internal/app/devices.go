package app

import (
	"context"
	"fmt"

	"bluecherry-cli/internal/session"
	"bluecherry-cli/pkg/models"
)

// RefreshDevices fetches the device list of the active server and publishes
// the usable devices with the saved camera grid. A result that arrives after
// the account changed is discarded with session.ErrStale.
func (a *App) RefreshDevices(ctx context.Context) ([]models.Device, error) {
	c, acc, err := a.Client()
	if err != nil {
		return nil, err
	}
	gen := a.Session.Generation()

	devices, err := c.GetDevices(ctx)
	if err != nil {
		return nil, err
	}
	usable := models.UsableDevices(devices)

	grid, err := a.Accounts.SelectedDevices(ctx, acc.ID)
	if err != nil {
		return nil, a.reportStorage(err)
	}

	if _, err := a.Session.DispatchAt(gen, session.UpdateAllDeviceList{Devices: usable, Grid: grid}); err != nil {
		return nil, err
	}
	return usable, nil
}

// SelectCamera puts deviceID into a grid slot of the active profile. An
// empty deviceID clears the slot.
func (a *App) SelectCamera(ctx context.Context, layout models.Layout, index int, deviceID string) (models.DeviceGrid, error) {
	acc, err := a.Active()
	if err != nil {
		return models.DeviceGrid{}, err
	}

	if deviceID != "" {
		if devices := a.Session.Snapshot().DeviceList; len(devices) > 0 && !containsDevice(devices, deviceID) {
			return models.DeviceGrid{}, fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
		}
	}

	grid, err := a.Accounts.SetSelectedDevice(ctx, acc.ID, layout, index, deviceID)
	if err != nil {
		return grid, a.reportStorage(err)
	}
	if _, err := a.Session.Dispatch(session.UpdateSelectedDeviceList{Grid: grid}); err != nil {
		return grid, err
	}
	return grid, nil
}

func containsDevice(devices []models.Device, id string) bool {
	for _, d := range devices {
		if d.ID == id {
			return true
		}
	}
	return false
}
