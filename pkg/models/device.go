package models

import "encoding/xml"

// StatusOK is the only device status the server reports for a usable channel.
const StatusOK = "OK"

// DeviceListResponse is the XML document returned by GET /devices.php?XML=1
type DeviceListResponse struct {
	XMLName xml.Name    `xml:"devices"`
	Devices []DeviceXML `xml:"device"`
}

// DeviceXML mirrors a <device> element. Some server versions put the id in an
// attribute, others in a child element.
type DeviceXML struct {
	IDAttr     string `xml:"id,attr"`
	ID         string `xml:"id"`
	DeviceName string `xml:"device_name"`
	Status     string `xml:"status"`
}

// Device is a camera channel exposed by the server.
type Device struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Status      string `json:"status" yaml:"status"`
}

// Usable reports whether the device can be streamed.
func (d Device) Usable() bool {
	return d.Status == StatusOK
}

// ToDevice normalizes the XML element.
func (x DeviceXML) ToDevice() Device {
	id := x.ID
	if id == "" {
		id = x.IDAttr
	}
	return Device{ID: id, DisplayName: x.DeviceName, Status: x.Status}
}

// UsableDevices keeps only devices with status OK, preserving order.
func UsableDevices(devices []Device) []Device {
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		if d.Usable() {
			out = append(out, d)
		}
	}
	return out
}
