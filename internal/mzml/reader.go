package mzml

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"io"
	"math"
	"strconv"

	"golang.org/x/net/html/charset"

	"github.com/jonghyeonseol/Glycolamp/internal/spectrum"
)

// Read parses an mzML document from r. Content outside the mzML element
// (e.g. an indexedmzML wrapper) is skipped.
func Read(r io.Reader) (*File, error) {
	var f File

	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel

	for {
		t, tokenErr := d.Token()
		if tokenErr != nil {
			if tokenErr == io.EOF {
				break
			}
			return nil, tokenErr
		}
		if se, ok := t.(xml.StartElement); ok && se.Name.Local == "mzML" {
			if err := d.DecodeElement(&f.content, &se); err != nil {
				return nil, err
			}
		}
	}
	if f.content.Run.SpectrumList.Spectrum == nil {
		return nil, ErrNoSpectrumList
	}
	return &f, nil
}

// NumSpectra returns the number of spectra in the file.
func (f *File) NumSpectra() int {
	return len(f.content.Run.SpectrumList.Spectrum)
}

// Spectrum converts the i-th spectrum to the search engine's record:
// scan id, MS level, retention time in seconds, precursor selection (m/z
// and charge, charge 0 when absent) and decoded peak arrays.
func (f *File) Spectrum(i int) (*spectrum.Spectrum, error) {
	xs := &f.content.Run.SpectrumList.Spectrum[i]
	s := &spectrum.Spectrum{
		ScanID:  xs.ID,
		MSLevel: 1,
	}

	if v, ok := findCV(xs.CvPar, cvMSLevel); ok {
		level, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		s.MSLevel = level
	}

	for _, sc := range xs.ScanList.Scan {
		for _, cv := range sc.CvPar {
			if cv.Accession != cvScanStartTime {
				continue
			}
			rt, err := strconv.ParseFloat(cv.Value, 64)
			if err != nil {
				return nil, err
			}
			// Scan start times are stored in minutes or seconds.
			if cv.UnitAccession == cvUnitMinute || cv.UnitAccession == cvUnitMinuteLegacy {
				rt *= 60
			}
			s.RetentionTime = rt
		}
	}

	for _, pl := range xs.PrecursorList {
		for _, prec := range pl.Precursor {
			for _, ion := range prec.SelectedIonList.SelectedIon {
				if v, ok := findCV(ion.CvPar, cvSelectedIonMz); ok {
					mz, err := strconv.ParseFloat(v, 64)
					if err != nil {
						return nil, err
					}
					s.PrecursorMZ = mz
				}
				if v, ok := findCV(ion.CvPar, cvChargeState); ok {
					z, err := strconv.Atoi(v)
					if err != nil {
						return nil, err
					}
					s.PrecursorCharge = z
				}
			}
		}
	}

	n := xs.DefaultArrayLength
	s.MZ = make([]float64, n)
	s.Intensity = make([]float64, n)
	for bi := range xs.BinaryDataArrayList.BinaryDataArray {
		if err := fillArray(s, &xs.BinaryDataArrayList.BinaryDataArray[bi]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Centroid reports whether the i-th spectrum contains centroided peaks.
func (f *File) Centroid(i int) bool {
	_, ok := findCV(f.content.Run.SpectrumList.Spectrum[i].CvPar, cvCentroid)
	return ok
}

// fillArray decodes one binaryDataArray (base64, optionally zlib, 32- or
// 64-bit little-endian floats) into the m/z or intensity side of s.
func fillArray(s *spectrum.Spectrum, bda *binaryDataArray) error {
	var zlibCompressed, bits64, isMz, isIntensity bool
	for _, cv := range bda.CvPar {
		switch cv.Accession {
		case cvZlibCompression:
			zlibCompressed = true
		case cv64Bit:
			bits64 = true
		case cvMzArray:
			isMz = true
		case cvIntensityArray:
			isIntensity = true
		case "MS:1002312", "MS:1002313", "MS:1002314",
			"MS:1002746", "MS:1002747", "MS:1002748":
			return ErrUnsupportedCompression
		}
	}
	if !isMz && !isIntensity {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(bda.Binary)
	if err != nil {
		return err
	}
	if zlibCompressed {
		z, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return err
		}
		defer z.Close()
		if data, err = io.ReadAll(z); err != nil {
			return err
		}
	}

	dst := s.Intensity
	if isMz {
		dst = s.MZ
	}
	if bits64 {
		cnt := len(data) / 8
		if cnt > len(dst) {
			cnt = len(dst)
		}
		for i := 0; i < cnt; i++ {
			dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
	} else {
		cnt := len(data) / 4
		if cnt > len(dst) {
			cnt = len(dst)
		}
		for i := 0; i < cnt; i++ {
			dst[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
		}
	}
	return nil
}

// Source adapts a parsed file to the streaming interface of the search
// orchestrator, skipping spectra with fewer than MinPeaks peaks.
type Source struct {
	file     *File
	next     int
	MinPeaks int
}

// NewSource wraps f in a Source. A minPeaks of 0 disables the peak filter.
func NewSource(f *File, minPeaks int) *Source {
	return &Source{file: f, MinPeaks: minPeaks}
}

// Next returns the next spectrum, or nil at end of stream.
func (src *Source) Next() (*spectrum.Spectrum, error) {
	for src.next < src.file.NumSpectra() {
		s, err := src.file.Spectrum(src.next)
		src.next++
		if err != nil {
			return nil, err
		}
		if src.MinPeaks > 0 && len(s.MZ) < src.MinPeaks {
			continue
		}
		return s, nil
	}
	return nil, nil
}
