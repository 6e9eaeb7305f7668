package client

import (
	"context"
	"encoding/xml"

	"bluecherry-cli/pkg/models"
)

// GetDevices lists every device the server knows, usable or not.
func (c *BluecherryClient) GetDevices(ctx context.Context) ([]models.Device, error) {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetQueryParam("XML", "1").
		Get("/devices.php")

	if err != nil {
		return nil, &ConnectionError{Op: "get devices", Err: err}
	}
	if err := checkStatus("get devices", resp); err != nil {
		return nil, err
	}

	var doc models.DeviceListResponse
	if err := xml.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, &ProtocolError{Op: "get devices", Detail: "API response has different XML data", Err: err}
	}

	devices := make([]models.Device, 0, len(doc.Devices))
	for _, d := range doc.Devices {
		dev := d.ToDevice()
		if dev.ID == "" {
			return nil, &ProtocolError{Op: "get devices", Detail: "device without id"}
		}
		devices = append(devices, dev)
	}
	return devices, nil
}
