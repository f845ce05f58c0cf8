package legacy

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/recommend-sdk/currentstate/internal/kvstore"
)

type prefEntry struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
	Text  string `xml:",chardata"`
}

type prefMap struct {
	XMLName  xml.Name    `xml:"map"`
	Strings  []prefEntry `xml:"string"`
	Booleans []prefEntry `xml:"boolean"`
	Ints     []prefEntry `xml:"int"`
	Longs    []prefEntry `xml:"long"`
}

//SharedPreferencesDir Read-only kvstore.Reader over a directory of Android SharedPreferences
//files. Namespace NAME is read from NAME.xml.
type SharedPreferencesDir struct {
	Dir string
}

//Snapshot Parses the namespace file. A missing file is an empty namespace.
func (s SharedPreferencesDir) Snapshot(ctx context.Context, namespace string) (*kvstore.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.Dir, namespace+".xml"))
	if err != nil {
		if os.IsNotExist(err) {
			return kvstore.NewSnapshot(nil), nil
		}
		return nil, err
	}

	var prefs prefMap
	if err := xml.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("malformed preferences file %v: %w", namespace, err)
	}

	values := map[string]interface{}{}
	for _, e := range prefs.Strings {
		values[e.Name] = e.Text
	}
	for _, e := range prefs.Booleans {
		b, err := strconv.ParseBool(e.Value)
		if err != nil {
			return nil, fmt.Errorf("malformed boolean %v in %v: %w", e.Name, namespace, err)
		}
		values[e.Name] = b
	}
	for _, e := range append(prefs.Ints, prefs.Longs...) {
		i, err := strconv.ParseInt(e.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed integer %v in %v: %w", e.Name, namespace, err)
		}
		values[e.Name] = i
	}

	return kvstore.NewSnapshot(values), nil
}
