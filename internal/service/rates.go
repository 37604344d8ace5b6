package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// RatesClient получает официальные курсы валют из веб-сервиса ЦБ РФ.
// Используется сводными отчетами для пересчета кошельков в базовую валюту.
type RatesClient struct {
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewRatesClient создаёт новый экземпляр клиента курсов валют ЦБ РФ
func NewRatesClient(logger *logrus.Logger) *RatesClient {
	return &RatesClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// buildCursRequest формирует SOAP-запрос курсов валют на указанную дату
func buildCursRequest(onDate time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
        <soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
            <soap12:Body>
                <GetCursOnDate xmlns="http://web.cbr.ru/">
                    <On_date>%s</On_date>
                </GetCursOnDate>
            </soap12:Body>
        </soap12:Envelope>`, onDate.Format("2006-01-02"))
}

// sendCursRequest отправляет SOAP-запрос в ЦБ РФ и возвращает необработанный ответ
func (c *RatesClient) sendCursRequest(soapRequest string) ([]byte, error) {
	req, err := http.NewRequest(
		"POST",
		"https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx",
		bytes.NewBuffer([]byte(soapRequest)),
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/GetCursOnDate")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка при выполнении HTTP-запроса: %v", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении ответа: %v", err)
	}

	return rawBody, nil
}

// parseCursResponse извлекает курс валюты с кодом code из XML-ответа.
// Курс нормализуется на единицу валюты с учетом номинала (Vnom).
func parseCursResponse(rawBody []byte, code string) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("ошибка при разборе XML: %v", err)
	}

	rows := doc.FindElements("//ValuteData/ValuteCursOnDate")
	if len(rows) == 0 {
		return 0, errors.New("данные о курсах валют не найдены")
	}

	for _, row := range rows {
		charCode := row.FindElement("./VchCode")
		if charCode == nil || !strings.EqualFold(strings.TrimSpace(charCode.Text()), code) {
			continue
		}

		cursElement := row.FindElement("./Vcurs")
		nomElement := row.FindElement("./Vnom")
		if cursElement == nil || nomElement == nil {
			return 0, errors.New("элементы <Vcurs>/<Vnom> отсутствуют в XML-ответе")
		}

		var curs, nom float64
		if _, err := fmt.Sscanf(strings.TrimSpace(cursElement.Text()), "%f", &curs); err != nil {
			return 0, fmt.Errorf("ошибка при преобразовании курса: %v", err)
		}
		if _, err := fmt.Sscanf(strings.TrimSpace(nomElement.Text()), "%f", &nom); err != nil || nom == 0 {
			return 0, fmt.Errorf("ошибка при преобразовании номинала")
		}

		return curs / nom, nil
	}

	return 0, fmt.Errorf("валюта %s не найдена в ответе ЦБ РФ", code)
}

// GetRate возвращает курс валюты code к рублю на сегодня
func (c *RatesClient) GetRate(code string) (float64, error) {
	if strings.EqualFold(code, "RUB") {
		return 1, nil
	}

	c.logger.WithField("currency", code).Info("Запрос курса валюты в ЦБ РФ...")
	soapRequest := buildCursRequest(time.Now())

	rawBody, err := c.sendCursRequest(soapRequest)
	if err != nil {
		c.logger.WithError(err).Error("Ошибка при отправке запроса в ЦБ РФ")
		return 0, err
	}

	rate, err := parseCursResponse(rawBody, code)
	if err != nil {
		c.logger.WithError(err).Error("Ошибка при разборе XML-ответа от ЦБ РФ")
		return 0, err
	}

	c.logger.WithFields(logrus.Fields{
		"currency": code,
		"rate":     rate,
	}).Info("Курс валюты успешно получен")
	return rate, nil
}
