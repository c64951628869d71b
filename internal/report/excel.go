package report

import (
	"github.com/a-h/templ"

	"github.com/JonMunkholm/doccompare/internal/tablediff"
)

const (
	rowMarkColor  = "#ffb9b9"
	cellMarkColor = "rgb(127, 162, 92)"
)

var (
	rowMarkStyle  = templ.SafeCSS("background-color: " + rowMarkColor + ";")
	cellMarkStyle = templ.SafeCSS("background-color: " + cellMarkColor + ";")
)

// ExcelData is the input of ExcelReport.
type ExcelData struct {
	Title     string
	Left      FileInfo
	Right     FileInfo
	Result    *tablediff.Result
	Watermark Watermark
}

const excelStyle = `
.table-container { display: flex }
.table-container .table-responsive { flex: 0 0 auto; margin-right: 10px; overflow-x: unset }
.marker { width: 25px; background-color: #fff }
.bi-arrow-bar-right::before { font-size: 1.23rem; font-weight: 500 !important; color: red }
tr td:first-child { border-top: 1px solid #fff; border-left: 1px solid #fff; border-bottom: 1px solid #fff }
`

const scrollSync = `<script>
(function () {
  var a = document.getElementById("paneLeft"), b = document.getElementById("paneRight"), busy = false;
  function sync(src, dst) {
    src.addEventListener("scroll", function () {
      if (busy) { busy = false; return; }
      busy = true;
      dst.scrollTop = src.scrollTop;
      dst.scrollLeft = src.scrollLeft;
    });
  }
  sync(a, b); sync(b, a);
})();
</script>
`

func (d ExcelData) title() string {
	if d.Title == "" {
		return "Comparison Result"
	}
	return d.Title
}

func (d ExcelData) result() *tablediff.Result {
	if d.Result == nil {
		return &tablediff.Result{}
	}
	return d.Result
}
