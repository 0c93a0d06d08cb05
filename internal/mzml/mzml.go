// Package mzml reads MS/MS spectra from mzML files and adapts them to the
// spectrum records consumed by the search engine. Only the subset of the
// format needed for searching is parsed: spectrum identity, MS level,
// retention time, precursor selection and the binary peak arrays.
package mzml

import (
	"encoding/xml"
	"errors"
)

// CV accession numbers used during extraction.
const (
	cvMSLevel          = "MS:1000511"
	cvCentroid         = "MS:1000127"
	cvScanStartTime    = "MS:1000016"
	cvSelectedIonMz    = "MS:1000744"
	cvChargeState      = "MS:1000041"
	cvZlibCompression  = "MS:1000574"
	cvMzArray          = "MS:1000514"
	cvIntensityArray   = "MS:1000515"
	cv64Bit            = "MS:1000523"
	cvUnitMinute       = "UO:0000031"
	cvUnitMinuteLegacy = "MS:1000038"
)

var (
	// ErrNoSpectrumList means the file carries no spectra.
	ErrNoSpectrumList = errors.New("mzml: no spectrum list")
	// ErrUnsupportedCompression means a binary array uses a compression
	// scheme other than none or zlib (e.g. MS-Numpress).
	ErrUnsupportedCompression = errors.New("mzml: unsupported binary data compression")
)

// File holds the parsed mzML document.
type File struct {
	content mzMLContent
}

type mzMLContent struct {
	XMLName xml.Name `xml:"http://psi.hupo.org/ms/mzml mzML"`
	Run     run      `xml:"run"`
}

type run struct {
	ID           string       `xml:"id,attr,omitempty"`
	SpectrumList spectrumList `xml:"spectrumList"`
}

type spectrumList struct {
	Count    int           `xml:"count,attr,omitempty"`
	Spectrum []xmlSpectrum `xml:"spectrum"`
}

type xmlSpectrum struct {
	Index               int                 `xml:"index,attr"`
	ID                  string              `xml:"id,attr"`
	DefaultArrayLength  int                 `xml:"defaultArrayLength,attr"`
	CvPar               []cvParam           `xml:"cvParam"`
	ScanList            scanList            `xml:"scanList"`
	PrecursorList       []precursorList     `xml:"precursorList"`
	BinaryDataArrayList binaryDataArrayList `xml:"binaryDataArrayList"`
}

type scanList struct {
	Scan []scan `xml:"scan"`
}

type scan struct {
	CvPar []cvParam `xml:"cvParam"`
}

type precursorList struct {
	Precursor []precursor `xml:"precursor"`
}

type precursor struct {
	SpectrumRef     string          `xml:"spectrumRef,attr,omitempty"`
	SelectedIonList selectedIonList `xml:"selectedIonList"`
}

type selectedIonList struct {
	SelectedIon []selectedIon `xml:"selectedIon"`
}

type selectedIon struct {
	CvPar []cvParam `xml:"cvParam"`
}

type binaryDataArrayList struct {
	BinaryDataArray []binaryDataArray `xml:"binaryDataArray"`
}

type binaryDataArray struct {
	CvPar  []cvParam `xml:"cvParam"`
	Binary string    `xml:"binary"`
}

type cvParam struct {
	Accession     string `xml:"accession,attr,omitempty"`
	Name          string `xml:"name,attr,omitempty"`
	Value         string `xml:"value,attr,omitempty"`
	UnitAccession string `xml:"unitAccession,attr,omitempty"`
}

func findCV(params []cvParam, accession string) (string, bool) {
	for _, p := range params {
		if p.Accession == accession {
			return p.Value, true
		}
	}
	return "", false
}
