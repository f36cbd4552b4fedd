// Package inmettest builds INMET-shaped station files and yearly archives for tests.
package inmettest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zip"
	"golang.org/x/text/encoding/charmap"
)

// Header is the column header of the generated station files.
const Header = "Data;Hora UTC;PRECIPITAÇÃO TOTAL, HORÁRIO (mm);PRESSAO ATMOSFERICA AO NIVEL DA ESTACAO, HORARIA (mB);TEMPERATURA DO AR - BULBO SECO, HORARIA (°C);UMIDADE RELATIVA DO AR, HORARIA (%);"

// Member is a single archive entry.
type Member struct {
	Name string
	Data []byte
}

// StationMemberName returns the archive path INMET uses for station A652.
func StationMemberName(year int) string {
	return fmt.Sprintf("%d/INMET_SE_RJ_A652_RIO DE JANEIRO - FORTE DE COPACABANA_01-01-%d_A_31-12-%d.CSV", year, year, year)
}

// OtherMemberName returns the archive path of an unrelated station.
func OtherMemberName(year int) string {
	return fmt.Sprintf("%d/INMET_SE_SP_A701_SAO PAULO - MIRANTE_01-01-%d_A_31-12-%d.CSV", year, year, year)
}

// Preamble returns the eight station metadata lines.
func Preamble() string {
	return strings.Join([]string{
		"REGIAO:;SE",
		"UF:;RJ",
		"ESTACAO:;RIO DE JANEIRO - FORTE DE COPACABANA",
		"CODIGO (WMO):;A652",
		"LATITUDE:;-22,98833333",
		"LONGITUDE:;-43,19055555",
		"ALTITUDE:;13,67",
		"DATA DE FUNDACAO:;28/12/07",
	}, "\r\n") + "\r\n"
}

// StationText returns a station file with the given number of hourly rows,
// as UTF-8 text. Use Latin1 to get the bytes INMET publishes.
func StationText(year, rows int) string {
	var b strings.Builder
	b.WriteString(Preamble())
	b.WriteString(Header + "\r\n")
	for i := 0; i < rows; i++ {
		humidity := fmt.Sprintf("%d", 70+i%20)
		if i%7 == 3 {
			humidity = "-9999"
		}
		fmt.Fprintf(&b, "%d/01/%02d;%02d00 UTC;%d;1011,%d;25,%d;%s;\r\n",
			year, 1+i/24, i%24, i%3, i%10, i%10, humidity)
	}
	return b.String()
}

// Latin1 encodes UTF-8 text as ISO-8859-1.
func Latin1(s string) []byte {
	out, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		panic(fmt.Sprintf("inmettest: encode latin1: %v", err))
	}
	return []byte(out)
}

// StationFile returns latin1 bytes of a station file with rows data lines.
func StationFile(year, rows int) []byte {
	return Latin1(StationText(year, rows))
}

// Archive zips members into an in-memory archive.
func Archive(members ...Member) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m.Name)
		if err != nil {
			panic(fmt.Sprintf("inmettest: create %s: %v", m.Name, err))
		}
		if _, err := w.Write(m.Data); err != nil {
			panic(fmt.Sprintf("inmettest: write %s: %v", m.Name, err))
		}
	}
	if err := zw.Close(); err != nil {
		panic(fmt.Sprintf("inmettest: close archive: %v", err))
	}
	return buf.Bytes()
}

// YearArchive returns an archive holding station A652 and one other station.
func YearArchive(year, rows int) []byte {
	return Archive(
		Member{Name: OtherMemberName(year), Data: StationFile(year, rows)},
		Member{Name: StationMemberName(year), Data: StationFile(year, rows)},
	)
}
