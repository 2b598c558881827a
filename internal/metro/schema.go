package metro

import (
	"fmt"

	"github.com/beevik/etree"
)

// TmsConfig is the root of one network configuration snapshot. JSON field
// order follows the document schema.
type TmsConfig struct {
	Corridor   []Corridor   `json:"corridor"`
	Camera     []Camera     `json:"camera"`
	Commlink   []Commlink   `json:"commlink"`
	Controller []Controller `json:"controller"`
	Dms        []Dms        `json:"dms"`
	TimeStamp  string       `json:"time_stamp"`
}

// Corridor is one freeway corridor, keyed by route and direction.
type Corridor struct {
	RNode []RNode `json:"r_node"`
	Route string  `json:"route"`
	Dir   string  `json:"dir"`
}

// RNode is one roadway node on a corridor.
type RNode struct {
	Detector   []Detector `json:"detector"`
	Meter      []Meter    `json:"meter"`
	Name       string     `json:"name"`
	NType      string     `json:"n_type"`
	Pickable   string     `json:"pickable"`
	Above      string     `json:"above"`
	Transition string     `json:"transition"`
	StationID  *string    `json:"station_id,omitempty"`
	Label      string     `json:"label"`
	Lon        string     `json:"lon"`
	Lat        string     `json:"lat"`
	Lanes      string     `json:"lanes"`
	AttachSide string     `json:"attach_side"`
	Shift      string     `json:"shift"`
	Active     string     `json:"active"`
	Abandoned  string     `json:"abandoned"`
	SLimit     string     `json:"s_limit"`
	Forks      *string    `json:"forks,omitempty"`
}

// Detector is one traffic detector on an r-node.
type Detector struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	Abandoned  string  `json:"abandoned"`
	Category   string  `json:"category"`
	Lane       string  `json:"lane"`
	Field      string  `json:"field"`
	Controller *string `json:"controller,omitempty"`
}

// Meter is one ramp meter on an r-node.
type Meter struct {
	Name    string  `json:"name"`
	Lon     *string `json:"lon,omitempty"`
	Lat     *string `json:"lat,omitempty"`
	Storage string  `json:"storage"`
	MaxWait string  `json:"max_wait"`
}

// Camera is one traffic camera.
type Camera struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Lon         *string `json:"lon,omitempty"`
	Lat         *string `json:"lat,omitempty"`
}

// Commlink is one communication link.
type Commlink struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Protocol    string `json:"protocol"`
}

// Controller is one field controller. The DTD declares an "active"
// attribute which real documents never carry; "condition" is carried by
// the documents but not the DTD, so condition is required here and active
// is dropped.
type Controller struct {
	Name      string  `json:"name"`
	Condition string  `json:"condition"`
	Drop      string  `json:"drop"`
	Commlink  *string `json:"commlink,omitempty"`
	Lon       *string `json:"lon,omitempty"`
	Lat       *string `json:"lat,omitempty"`
	Location  string  `json:"location"`
	Cabinet   *string `json:"cabinet,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// Dms is one dynamic message sign.
type Dms struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Lon          *string `json:"lon,omitempty"`
	Lat          *string `json:"lat,omitempty"`
	WidthPixels  *string `json:"width_pixels,omitempty"`
	HeightPixels *string `json:"height_pixels,omitempty"`
}

// attrRequired returns an attribute whose absence fails the transform.
func attrRequired(el *etree.Element, key string) (string, error) {
	if a := el.SelectAttr(key); a != nil {
		return a.Value, nil
	}
	return "", fmt.Errorf("<%s> missing required attribute %q", el.Tag, key)
}

// attrDefault returns an attribute value, substituting the DTD default
// when the attribute is absent.
func attrDefault(el *etree.Element, key, def string) string {
	if a := el.SelectAttr(key); a != nil {
		return a.Value
	}
	return def
}

// attrImplied returns an attribute with no DTD default. Absent attributes
// stay nil and are omitted from the JSON projection.
func attrImplied(el *etree.Element, key string) *string {
	if a := el.SelectAttr(key); a != nil {
		v := a.Value
		return &v
	}
	return nil
}

// parseConfig builds a TmsConfig from the tms_config root element.
func parseConfig(root *etree.Element) (*TmsConfig, error) {
	if root == nil || root.Tag != "tms_config" {
		return nil, fmt.Errorf("document root is not <tms_config>")
	}
	ts, err := attrRequired(root, "time_stamp")
	if err != nil {
		return nil, err
	}
	cfg := &TmsConfig{
		Corridor:   []Corridor{},
		Camera:     []Camera{},
		Commlink:   []Commlink{},
		Controller: []Controller{},
		Dms:        []Dms{},
		TimeStamp:  ts,
	}
	for _, el := range root.SelectElements("corridor") {
		cor, err := parseCorridor(el)
		if err != nil {
			return nil, err
		}
		cfg.Corridor = append(cfg.Corridor, *cor)
	}
	for _, el := range root.SelectElements("camera") {
		cam, err := parseCamera(el)
		if err != nil {
			return nil, err
		}
		cfg.Camera = append(cfg.Camera, cam)
	}
	for _, el := range root.SelectElements("commlink") {
		cl, err := parseCommlink(el)
		if err != nil {
			return nil, err
		}
		cfg.Commlink = append(cfg.Commlink, cl)
	}
	for _, el := range root.SelectElements("controller") {
		ctr, err := parseController(el)
		if err != nil {
			return nil, err
		}
		cfg.Controller = append(cfg.Controller, ctr)
	}
	for _, el := range root.SelectElements("dms") {
		dms, err := parseDms(el)
		if err != nil {
			return nil, err
		}
		cfg.Dms = append(cfg.Dms, dms)
	}
	return cfg, nil
}

// parseCorridor builds a Corridor from a corridor element.
func parseCorridor(el *etree.Element) (*Corridor, error) {
	route, err := attrRequired(el, "route")
	if err != nil {
		return nil, err
	}
	dir, err := attrRequired(el, "dir")
	if err != nil {
		return nil, err
	}
	cor := &Corridor{RNode: []RNode{}, Route: route, Dir: dir}
	for _, rel := range el.SelectElements("r_node") {
		rn, err := parseRNode(rel)
		if err != nil {
			return nil, err
		}
		cor.RNode = append(cor.RNode, rn)
	}
	return cor, nil
}

func parseRNode(el *etree.Element) (RNode, error) {
	name, err := attrRequired(el, "name")
	if err != nil {
		return RNode{}, err
	}
	lon, err := attrRequired(el, "lon")
	if err != nil {
		return RNode{}, err
	}
	lat, err := attrRequired(el, "lat")
	if err != nil {
		return RNode{}, err
	}
	rn := RNode{
		Detector:   []Detector{},
		Meter:      []Meter{},
		Name:       name,
		NType:      attrDefault(el, "n_type", "Station"),
		Pickable:   attrDefault(el, "pickable", "f"),
		Above:      attrDefault(el, "above", "f"),
		Transition: attrDefault(el, "transition", "None"),
		StationID:  attrImplied(el, "station_id"),
		Label:      attrDefault(el, "label", ""),
		Lon:        lon,
		Lat:        lat,
		Lanes:      attrDefault(el, "lanes", "0"),
		AttachSide: attrDefault(el, "attach_side", "right"),
		Shift:      attrDefault(el, "shift", "0"),
		Active:     attrDefault(el, "active", "t"),
		Abandoned:  attrDefault(el, "abandoned", "f"),
		SLimit:     attrDefault(el, "s_limit", "55"),
		Forks:      attrImplied(el, "forks"),
	}
	for _, del := range el.SelectElements("detector") {
		det, err := parseDetector(del)
		if err != nil {
			return RNode{}, err
		}
		rn.Detector = append(rn.Detector, det)
	}
	for _, mel := range el.SelectElements("meter") {
		m, err := parseMeter(mel)
		if err != nil {
			return RNode{}, err
		}
		rn.Meter = append(rn.Meter, m)
	}
	return rn, nil
}

func parseDetector(el *etree.Element) (Detector, error) {
	name, err := attrRequired(el, "name")
	if err != nil {
		return Detector{}, err
	}
	return Detector{
		Name:       name,
		Label:      attrDefault(el, "label", "FUTURE"),
		Abandoned:  attrDefault(el, "abandoned", "f"),
		Category:   attrDefault(el, "category", ""),
		Lane:       attrDefault(el, "lane", "0"),
		Field:      attrDefault(el, "field", "22.0"),
		Controller: attrImplied(el, "controller"),
	}, nil
}

func parseMeter(el *etree.Element) (Meter, error) {
	name, err := attrRequired(el, "name")
	if err != nil {
		return Meter{}, err
	}
	storage, err := attrRequired(el, "storage")
	if err != nil {
		return Meter{}, err
	}
	return Meter{
		Name:    name,
		Lon:     attrImplied(el, "lon"),
		Lat:     attrImplied(el, "lat"),
		Storage: storage,
		MaxWait: attrDefault(el, "max_wait", "240"),
	}, nil
}

func parseCamera(el *etree.Element) (Camera, error) {
	name, err := attrRequired(el, "name")
	if err != nil {
		return Camera{}, err
	}
	desc, err := attrRequired(el, "description")
	if err != nil {
		return Camera{}, err
	}
	return Camera{
		Name:        name,
		Description: desc,
		Lon:         attrImplied(el, "lon"),
		Lat:         attrImplied(el, "lat"),
	}, nil
}

func parseCommlink(el *etree.Element) (Commlink, error) {
	name, err := attrRequired(el, "name")
	if err != nil {
		return Commlink{}, err
	}
	desc, err := attrRequired(el, "description")
	if err != nil {
		return Commlink{}, err
	}
	protocol, err := attrRequired(el, "protocol")
	if err != nil {
		return Commlink{}, err
	}
	return Commlink{Name: name, Description: desc, Protocol: protocol}, nil
}

func parseController(el *etree.Element) (Controller, error) {
	name, err := attrRequired(el, "name")
	if err != nil {
		return Controller{}, err
	}
	condition, err := attrRequired(el, "condition")
	if err != nil {
		return Controller{}, err
	}
	drop, err := attrRequired(el, "drop")
	if err != nil {
		return Controller{}, err
	}
	location, err := attrRequired(el, "location")
	if err != nil {
		return Controller{}, err
	}
	return Controller{
		Name:      name,
		Condition: condition,
		Drop:      drop,
		Commlink:  attrImplied(el, "commlink"),
		Lon:       attrImplied(el, "lon"),
		Lat:       attrImplied(el, "lat"),
		Location:  location,
		Cabinet:   attrImplied(el, "cabinet"),
		Notes:     attrImplied(el, "notes"),
	}, nil
}

func parseDms(el *etree.Element) (Dms, error) {
	name, err := attrRequired(el, "name")
	if err != nil {
		return Dms{}, err
	}
	desc, err := attrRequired(el, "description")
	if err != nil {
		return Dms{}, err
	}
	return Dms{
		Name:         name,
		Description:  desc,
		Lon:          attrImplied(el, "lon"),
		Lat:          attrImplied(el, "lat"),
		WidthPixels:  attrImplied(el, "width_pixels"),
		HeightPixels: attrImplied(el, "height_pixels"),
	}, nil
}
