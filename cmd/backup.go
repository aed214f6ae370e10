package cmd

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nvkalinin/jalali-calendar/log"
)

type Backup struct {
	ServerUrl   string        `long:"server-url" short:"s" env:"SERVER_URL" default:"http://localhost" description:"URL сервера с REST API календаря."`
	AdminPasswd string        `long:"passwd" short:"p" env:"WEB_ADMIN_PASSWD" description:"Пароль пользователя admin."`
	OutFile     string        `long:"out" short:"o" env:"OUT" description:"Путь к файлу, куда сохранить бекап. По умолчанию: имя, предложенное сервером, или cal_YYYY-MM-DD.bolt.gz"`
	Timeout     time.Duration `long:"timeout" short:"t" env:"TIMEOUT" default:"600s" description:"Макс. время выполнения запроса."`
}

func (b *Backup) Execute(args []string) error {
	cl := &adminClient{ServerUrl: b.ServerUrl, Passwd: b.AdminPasswd, Timeout: b.Timeout}

	resp, err := cl.do(http.MethodGet, "/api/admin/backup", http.NoBody, "")
	if err != nil {
		log.Fatalf("[ERROR] backup error: %v", err)
	}
	defer closeBody(resp)

	fname := b.filename(resp)
	f, err := os.Create(fname)
	if err != nil {
		log.Fatalf("[ERROR] cannot open %s: %v", fname, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[WARN] cannot close %s: %v", fname, err)
		}
	}()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		log.Fatalf("[ERROR] cannot save backup to %s: %v", fname, err)
	}
	log.Printf("[INFO] backup saved to %s, %d bytes", fname, n)

	return nil
}

func (b *Backup) filename(resp *http.Response) string {
	if len(b.OutFile) > 0 {
		return b.OutFile
	}

	defName := fmt.Sprintf("cal_%s.bolt.gz", time.Now().Format("2006-01-02"))

	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil {
		return defName
	}

	name := filepath.Base(params["filename"]) // Не даем серверу выбрать каталог.
	if len(name) == 0 || name == "." || name == "/" {
		return defName
	}

	return name
}
